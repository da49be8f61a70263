package animals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "3" {
			t.Errorf("unexpected limit: %s", r.URL.RawQuery)
		}
		if r.Header.Get("x-api-key") != "cat-key" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`[{"url":"https://cdn.example.com/1.jpg"},{"url":"https://cdn.example.com/2.jpg"},{"url":"https://cdn.example.com/3.jpg"}]`))
	}))
	defer srv.Close()

	c := NewClient("cat-key")
	c.catBaseURL = srv.URL

	urls, err := c.Cats(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 urls, got %d", len(urls))
	}
}

func TestCatsClampsCount(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[{"url":"https://cdn.example.com/1.jpg"}]`))
	}))
	defer srv.Close()

	c := NewClient("")
	c.catBaseURL = srv.URL

	if _, err := c.Cats(context.Background(), 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != "5" {
		t.Fatalf("expected limit clamped to 5, got %s", gotLimit)
	}
}

func TestDogSkipsVideos(t *testing.T) {
	responses := []string{
		`{"url":"https://random.dog/a.mp4"}`,
		`{"url":"https://random.dog/b.webm"}`,
		`{"url":"https://random.dog/c.jpg"}`,
	}
	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responses[call]))
		call++
	}))
	defer srv.Close()

	c := NewClient("")
	c.dogBaseURL = srv.URL

	url, err := c.Dog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://random.dog/c.jpg" {
		t.Fatalf("unexpected url: %s", url)
	}
}
