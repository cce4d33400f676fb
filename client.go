package tagpoll

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// defaultCount is the number of posts FetchRecent asks for when count <= 0.
const defaultCount = 10

// sampleCount is the sub-limit used by Sample.
const sampleCount = 5

// Fetcher polls the recent search endpoint for one hashtag.
// Everything it holds is fixed at construction, so it is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	base    *url.URL
	limiter *ratelimit.Limiter
	cfg     ClientConfig
	scheme  AuthScheme
	query   string
	now     func() time.Time
}

// NewFetcher validates creds and builds an authorized API client.
// It returns a *ConfigurationError for incomplete credentials and a
// *ClientInitError when the underlying client cannot be created.
func NewFetcher(creds Credentials, cfg ClientConfig) (*Fetcher, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	cfg.defaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		slog.Error("Error initializing Twitter v2 client", slog.Any("error", err))
		return nil, &ClientInitError{Err: fmt.Errorf("base url: %w", err)}
	}
	if base.Scheme == "" || base.Host == "" {
		err := fmt.Errorf("base url %q: missing scheme or host", cfg.BaseURL)
		slog.Error("Error initializing Twitter v2 client", slog.Any("error", err))
		return nil, &ClientInitError{Err: err}
	}

	transport := cfg.Transport
	if transport == nil {
		st, err := newStealthTransport(cfg.Proxy, cfg.Timeout)
		if err != nil {
			slog.Error("Error initializing Twitter v2 client", slog.Any("error", err))
			return nil, &ClientInitError{Err: err}
		}
		transport = st
	}

	hc, scheme := newAuthClient(creds, transport)
	hc.Timeout = cfg.Timeout

	f := &Fetcher{
		client:  hc,
		base:    base,
		limiter: ratelimit.NewLimiter(cfg.RateLimit),
		cfg:     cfg,
		scheme:  scheme,
		query:   BuildQuery(cfg.Hashtag),
		now:     time.Now,
	}
	slog.Info("fetcher initialized", slog.String("hashtag", cfg.Hashtag))
	return f, nil
}

// NewFetcherFromEnv reads credentials from the process environment and
// calls NewFetcher.
func NewFetcherFromEnv(cfg ClientConfig) (*Fetcher, error) {
	return NewFetcher(LoadCredentials(os.Getenv), cfg)
}

// Hashtag returns the searched hashtag.
func (f *Fetcher) Hashtag() string { return f.cfg.Hashtag }

// Query returns the search query fixed at construction.
func (f *Fetcher) Query() string { return f.query }

// Scheme returns the auth scheme in use.
func (f *Fetcher) Scheme() AuthScheme { return f.scheme }

// RateLimitedUntil returns when the search endpoint becomes available again,
// or the zero time if it is not rate limited.
func (f *Fetcher) RateLimitedUntil() time.Time {
	if !f.limiter.IsRateLimited(endpointSearchRecent) {
		return time.Time{}
	}
	return f.limiter.AvailableAt(endpointSearchRecent)
}

// Search fetches up to count recent posts matching the query.
// Unlike FetchRecent it reports failures to the caller.
func (f *Fetcher) Search(ctx context.Context, count int) ([]Record, error) {
	if count <= 0 {
		count = defaultCount
	}
	u := searchRecentURL(f.base, f.query, clampMaxResults(count))

	body, err := f.doGET(ctx, endpointSearchRecent, u)
	if err != nil {
		return nil, err
	}
	resp, err := parseSearchRecent(body)
	if err != nil {
		return nil, err
	}
	for _, e := range resp.Errors {
		slog.Debug("partial search error",
			slog.String("title", e.Title),
			slog.String("detail", e.Detail),
			slog.String("resource", e.ResourceType))
	}

	records := resp.normalize(f.now().UTC())
	if len(records) > count {
		records = records[:count]
	}
	return records, nil
}

// FetchRecent returns up to count recent posts. It never fails: errors are
// logged and reported as an empty result, which callers cannot tell apart
// from "no matching posts". Use Search to observe the error.
func (f *Fetcher) FetchRecent(ctx context.Context, count int) []Record {
	records, err := f.Search(ctx, count)
	if err != nil {
		slog.Error("Error fetching tweets", slog.Any("error", err))
		return []Record{}
	}
	if len(records) == 0 {
		slog.Warn("No tweets found matching query", slog.String("query", f.query))
		return []Record{}
	}
	slog.Info("Fetched tweets",
		slog.Int("count", len(records)),
		slog.String("hashtag", f.cfg.Hashtag))
	return records
}

// Sample returns the most recent post, or false when none is available.
// Calling it repeatedly gives a polled "stream" of the hashtag.
func (f *Fetcher) Sample(ctx context.Context) (Record, bool) {
	records := f.FetchRecent(ctx, sampleCount)
	if len(records) == 0 {
		return Record{}, false
	}
	return records[0], true
}
