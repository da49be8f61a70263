package cooldown

import (
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

func TestAllowWithinLimit(t *testing.T) {
	limiter := New(1, 5*time.Second)
	limiter.WithClock(fakeClock{now: time.Unix(100, 0)})

	ok, _ := limiter.Allow("g1")
	if !ok {
		t.Fatalf("first use should pass")
	}
	ok, retry := limiter.Allow("g1")
	if ok {
		t.Fatalf("second use inside window should be rejected")
	}
	if retry <= 0 || retry > 5*time.Second {
		t.Fatalf("unexpected retry %v", retry)
	}
}

func TestAllowAfterWindow(t *testing.T) {
	limiter := New(1, 5*time.Second)
	limiter.WithClock(fakeClock{now: time.Unix(100, 0)})
	if ok, _ := limiter.Allow("g1"); !ok {
		t.Fatalf("first use should pass")
	}

	limiter.WithClock(fakeClock{now: time.Unix(106, 0)})
	if ok, _ := limiter.Allow("g1"); !ok {
		t.Fatalf("use after window should pass")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := New(1, 5*time.Second)
	limiter.WithClock(fakeClock{now: time.Unix(100, 0)})
	if ok, _ := limiter.Allow("g1"); !ok {
		t.Fatalf("g1 should pass")
	}
	if ok, _ := limiter.Allow("g2"); !ok {
		t.Fatalf("g2 should be untouched by g1")
	}
}
