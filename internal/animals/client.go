package animals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultCatBaseURL = "https://api.thecatapi.com/v1/images/search"
	defaultDogBaseURL = "https://random.dog/woof.json"
)

var ErrNoImage = errors.New("animals: no usable image returned")

// Client fetches random animal pictures from the public cat and dog
// APIs. The cat API key is optional and only raises rate limits.
type Client struct {
	catBaseURL string
	dogBaseURL string
	catAPIKey  string
	http       *http.Client
}

func NewClient(catAPIKey string) *Client {
	return &Client{
		catBaseURL: defaultCatBaseURL,
		dogBaseURL: defaultDogBaseURL,
		catAPIKey:  catAPIKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Cats returns up to count cat image URLs, count clamped to 1..5.
func (c *Client) Cats(ctx context.Context, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	if count > 5 {
		count = 5
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.catBaseURL+"?limit="+strconv.Itoa(count), nil)
	if err != nil {
		return nil, fmt.Errorf("animals: build request: %w", err)
	}
	if c.catAPIKey != "" {
		req.Header.Set("x-api-key", c.catAPIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("animals: cat request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("animals: cat upstream status %d", resp.StatusCode)
	}

	var payload []struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("animals: decode cat response: %w", err)
	}

	urls := make([]string, 0, len(payload))
	for _, item := range payload {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoImage
	}
	return urls, nil
}

// Dog returns one dog image URL, retrying past video results since the
// upstream mixes mp4/webm clips into its rotation.
func (c *Client) Dog(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		url, err := c.fetchDog(ctx)
		if err != nil {
			return "", err
		}
		if isVideo(url) {
			continue
		}
		return url, nil
	}
	return "", ErrNoImage
}

func (c *Client) fetchDog(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dogBaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("animals: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("animals: dog request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("animals: dog upstream status %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("animals: decode dog response: %w", err)
	}
	if payload.URL == "" {
		return "", ErrNoImage
	}
	return payload.URL, nil
}

func isVideo(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".webm")
}
