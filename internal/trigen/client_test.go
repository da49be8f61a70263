package trigen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "/api/alt/generate", "test-key", nil)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Path != "/api/alt/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"username": "qu1et_fox",
			"displayName": "Quiet Fox",
			"bio": "hello",
			"avatarUrl": "https://cdn.example.com/a.png",
			"password": "hunter2",
			"meta": {"note": "fresh", "expiresAt": "2026-09-01", "token": "abc"}
		}`))
	})

	acct, err := c.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Username != "qu1et_fox" || acct.DisplayName != "Quiet Fox" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if acct.Note != "fresh" || acct.ExpiresAt != "2026-09-01" {
		t.Fatalf("unexpected meta: %+v", acct)
	}
}

func TestGenerateTokensExhaustedStatus(t *testing.T) {
	for _, status := range []int{http.StatusPaymentRequired, http.StatusTooManyRequests} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		if _, err := c.Generate(context.Background()); !errors.Is(err, ErrTokensExhausted) {
			t.Fatalf("status %d: expected ErrTokensExhausted, got %v", status, err)
		}
	}
}

func TestGenerateTokensExhaustedForbiddenBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "monthly quota exceeded"}`))
	})
	if _, err := c.Generate(context.Background()); !errors.Is(err, ErrTokensExhausted) {
		t.Fatalf("expected ErrTokensExhausted, got %v", err)
	}
}

func TestGenerateTokensExhaustedBodyMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "insufficient balance"}`))
	})
	if _, err := c.Generate(context.Background()); !errors.Is(err, ErrTokensExhausted) {
		t.Fatalf("expected ErrTokensExhausted, got %v", err)
	}
}

func TestGenerateDisabled(t *testing.T) {
	c := NewClient("https://example.com", "/gen", "", nil)
	if _, err := c.Generate(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestSanitizeRecursive(t *testing.T) {
	data := map[string]any{
		"username": "x",
		"Password": "secret",
		"nested": map[string]any{
			"COOKIE": "crumbs",
			"deep":   []any{map[string]any{"token": "t", "keep": "y"}},
		},
	}
	Sanitize(data)

	if _, ok := data["Password"]; ok {
		t.Fatal("password not stripped")
	}
	nested := data["nested"].(map[string]any)
	if _, ok := nested["COOKIE"]; ok {
		t.Fatal("cookie not stripped")
	}
	item := nested["deep"].([]any)[0].(map[string]any)
	if _, ok := item["token"]; ok {
		t.Fatal("nested token not stripped")
	}
	if item["keep"] != "y" {
		t.Fatal("benign key dropped")
	}
}
