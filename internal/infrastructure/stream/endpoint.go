package stream

import "strings"

const (
	// DefaultBaseURL is the API base assumed when none is configured.
	DefaultBaseURL = "https://api.yourdomain.com"

	// StreamPath is appended to the API base to locate the push channel.
	StreamPath = "/api/v1/trades/stream"
)

// DeriveEndpoint turns an HTTP(S) API base into the push-channel URL:
// one trailing slash is dropped, http becomes ws and https becomes wss.
// A base without an http prefix keeps its scheme untouched and will simply
// fail to dial.
func DeriveEndpoint(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimSuffix(base, "/")

	switch {
	case strings.HasPrefix(base, "https"):
		base = "wss" + strings.TrimPrefix(base, "https")
	case strings.HasPrefix(base, "http"):
		base = "ws" + strings.TrimPrefix(base, "http")
	}

	return base + StreamPath
}
