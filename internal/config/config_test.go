package config

import "testing"

func TestParseGuildBlacklist(t *testing.T) {
	set := ParseGuildBlacklist("123, 456;789\n junk 42abc")
	if len(set) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(set))
	}
	for _, id := range []string{"123", "456", "789"} {
		if _, ok := set[id]; !ok {
			t.Fatalf("missing id %s", id)
		}
	}
	if _, ok := set["42abc"]; ok {
		t.Fatalf("non-numeric token should be skipped")
	}
}

func TestParseGuildBlacklistEmpty(t *testing.T) {
	if set := ParseGuildBlacklist(""); len(set) != 0 {
		t.Fatalf("expected empty set, got %d", len(set))
	}
}
