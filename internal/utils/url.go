package utils

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var ErrInvalidImageURL = errors.New("invalid image url")

// NormalizeImageURL validates a user-supplied image URL for embedding:
// http(s) scheme, a resolvable-looking host (IDNA-normalized), no
// credentials. Returns the cleaned URL.
func NormalizeImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidImageURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidImageURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidImageURL
	}
	if parsed.User != nil {
		return "", ErrInvalidImageURL
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return "", ErrInvalidImageURL
	}
	asciiHost, err := idna.ToASCII(host)
	if err != nil {
		return "", ErrInvalidImageURL
	}
	if port := parsed.Port(); port != "" {
		parsed.Host = asciiHost + ":" + port
	} else {
		parsed.Host = asciiHost
	}
	parsed.Fragment = ""

	return parsed.String(), nil
}
