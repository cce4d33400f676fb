package tagpoll

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// DefaultHashtag is searched when ClientConfig.Hashtag is empty.
const DefaultHashtag = "#GrowWithGroqHack"

// ClientConfig holds all configuration for the Fetcher.
type ClientConfig struct {
	// Hashtag is the tag to search for, including the leading '#'.
	Hashtag string

	// BaseURL is the API root. Default: https://api.twitter.com
	BaseURL string

	// Proxy is the proxy URL used by the default stealth transport.
	Proxy string

	// Timeout bounds a single search request including body read.
	Timeout time.Duration

	// Transport replaces the default stealth browser transport.
	// Auth headers are still added on top of it.
	Transport http.RoundTripper

	// RateLimit configures per-endpoint rate-limit bookkeeping.
	RateLimit ratelimit.Config

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.Hashtag == "" {
		cfg.Hashtag = DefaultHashtag
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = apiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}
