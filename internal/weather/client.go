package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

var (
	ErrDisabled = errors.New("weather: client disabled")
	ErrNotFound = errors.New("weather: location not found")
)

// Report summarizes current conditions for a location. Temperatures are
// in Celsius, wind speed in meters per second.
type Report struct {
	Location    string
	Country     string
	Description string
	Temp        float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// FormatLocation maps the raw user input to OpenWeatherMap query
// parameters. A value containing a comma is treated as a zip with a
// country suffix already present; an all-digit value is treated as a
// US zip; anything else is a city name.
func FormatLocation(raw string) url.Values {
	raw = strings.TrimSpace(raw)
	params := url.Values{}
	switch {
	case strings.Contains(raw, ","):
		params.Set("zip", raw)
	case raw != "" && allDigits(raw):
		params.Set("zip", raw+",US")
	default:
		params.Set("q", raw)
	}
	return params
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Current fetches current conditions for the given location string.
func (c *Client) Current(ctx context.Context, location string) (*Report, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	params := FormatLocation(location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: upstream status %d", resp.StatusCode)
	}

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather: decode response: %w", err)
	}

	report := &Report{
		Location:  payload.Name,
		Country:   payload.Sys.Country,
		Temp:      payload.Main.Temp,
		FeelsLike: payload.Main.FeelsLike,
		Humidity:  payload.Main.Humidity,
		WindSpeed: payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		report.Description = payload.Weather[0].Description
	}
	return report, nil
}
