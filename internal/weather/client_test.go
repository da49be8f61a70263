package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFormatLocation(t *testing.T) {
	cases := []struct {
		in, key, val string
	}{
		{"90210,GB", "zip", "90210,GB"},
		{"90210", "zip", "90210,US"},
		{"London", "q", "London"},
		{"New York", "q", "New York"},
		{"  Paris  ", "q", "Paris"},
	}
	for _, tc := range cases {
		params := FormatLocation(tc.in)
		if got := params.Get(tc.key); got != tc.val {
			t.Errorf("FormatLocation(%q): %s=%q, want %q", tc.in, tc.key, got, tc.val)
		}
	}
}

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("expected metric units")
		}
		if r.URL.Query().Get("q") != "London" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"name": "London",
			"sys": {"country": "GB"},
			"weather": [{"description": "light rain"}],
			"main": {"temp": 14.2, "feels_like": 13.1, "humidity": 81},
			"wind": {"speed": 4.6}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	report, err := c.Current(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Location != "London" || report.Country != "GB" {
		t.Fatalf("unexpected location: %+v", report)
	}
	if report.Temp != 14.2 || report.Humidity != 81 || report.Description != "light rain" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestCurrentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	if _, err := c.Current(context.Background(), "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCurrentDisabled(t *testing.T) {
	c := NewClient("https://example.com", "")
	if _, err := c.Current(context.Background(), "London"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
