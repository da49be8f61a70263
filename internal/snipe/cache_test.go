package snipe

import (
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put("c1", Message{Content: "hello", AuthorName: "sam", DeletedAt: time.Now()})

	msg, ok := cache.Get("c1")
	if !ok || msg.Content != "hello" {
		t.Fatalf("expected cached message, got ok=%t msg=%+v", ok, msg)
	}
	if _, ok := cache.Get("c2"); ok {
		t.Fatalf("unexpected entry for empty channel")
	}
}

func TestCacheOverwriteKeepsLatest(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put("c1", Message{Content: "old", DeletedAt: time.Now()})
	cache.Put("c1", Message{Content: "new", DeletedAt: time.Now()})

	msg, ok := cache.Get("c1")
	if !ok || msg.Content != "new" {
		t.Fatalf("expected latest message, got %+v", msg)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Millisecond)
	cache.Put("c1", Message{Content: "gone", DeletedAt: time.Now().Add(-time.Second)})
	if _, ok := cache.Get("c1"); ok {
		t.Fatalf("expected expired entry to be dropped")
	}
}
