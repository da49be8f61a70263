package trigen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrTokensExhausted is returned when the generator API reports that the
// account's token balance or quota is spent. Callers surface a friendly
// message instead of the raw error.
var ErrTokensExhausted = errors.New("trigen: tokens exhausted")

// ErrDisabled is returned when the client was built without an API key.
var ErrDisabled = errors.New("trigen: client disabled")

// Account is one generated alt profile. Fields mirror the generator's
// response document; anything sensitive has already been stripped.
type Account struct {
	Username    string
	DisplayName string
	Bio         string
	AvatarURL   string
	Note        string
	ExpiresAt   string
}

type Client struct {
	baseURL  string
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(baseURL, endpoint, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 20 * time.Second},
		logger:   logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Generate requests one alt account from the upstream API.
func (c *Client) Generate(ctx context.Context) (*Account, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("trigen: build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trigen: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("trigen: read response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrTokensExhausted
	}
	if resp.StatusCode == http.StatusForbidden && containsQuotaPhrase(string(body)) {
		return nil, ErrTokensExhausted
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("trigen upstream error",
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("trigen: upstream status %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("trigen: decode response: %w", err)
	}
	if msg := errorMessage(data); msg != "" {
		if containsQuotaPhrase(msg) {
			return nil, ErrTokensExhausted
		}
		return nil, fmt.Errorf("trigen: upstream error: %s", msg)
	}

	Sanitize(data)
	return parseAccount(data), nil
}

func errorMessage(data map[string]any) string {
	for _, key := range []string{"error", "message"} {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

var quotaPhrases = []string{"quota", "token", "limit", "exceeded", "insufficient", "balance"}

func containsQuotaPhrase(s string) bool {
	s = strings.ToLower(s)
	for _, p := range quotaPhrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// sensitiveKeys are removed from the response document at any depth
// before the payload is used or logged.
var sensitiveKeys = map[string]struct{}{
	"password":        {},
	"pass":            {},
	"pwd":             {},
	"token":           {},
	"roblosecurity":   {},
	".roblosecurity":  {},
	"cookie":          {},
	"session":         {},
	"otp":             {},
	"2fa":             {},
	"auth":            {},
	"secret":          {},
	"email":           {},
}

// Sanitize strips credential-like keys from a decoded JSON document,
// recursing through nested objects and arrays in place.
func Sanitize(data map[string]any) {
	for key, val := range data {
		if _, bad := sensitiveKeys[strings.ToLower(key)]; bad {
			delete(data, key)
			continue
		}
		sanitizeValue(val)
	}
}

func sanitizeValue(val any) {
	switch v := val.(type) {
	case map[string]any:
		Sanitize(v)
	case []any:
		for _, item := range v {
			sanitizeValue(item)
		}
	}
}

func parseAccount(data map[string]any) *Account {
	acct := &Account{
		Username:    stringField(data, "username"),
		DisplayName: stringField(data, "displayName"),
		Bio:         stringField(data, "bio"),
		AvatarURL:   stringField(data, "avatarUrl"),
	}
	if meta, ok := data["meta"].(map[string]any); ok {
		acct.Note = stringField(meta, "note")
		acct.ExpiresAt = stringField(meta, "expiresAt")
	}
	if acct.DisplayName == "" {
		acct.DisplayName = acct.Username
	}
	return acct
}

func stringField(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}
