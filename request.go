package tagpoll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// doGET executes a GET request and returns the body of a 200 response.
// A 429 marks endpoint as rate limited until the advertised reset time.
func (f *Fetcher) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	if f.limiter.IsRateLimited(endpoint) {
		until := f.limiter.AvailableAt(endpoint)
		f.recordAPICall(endpoint, false, true)
		return nil, fmt.Errorf("%s skipped until %s: %w", endpoint, until.Format(time.RFC3339), ErrRateLimited)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.recordAPICall(endpoint, false, false)
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.recordAPICall(endpoint, false, false)
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		f.recordAPICall(endpoint, false, true)
		until := parseRateLimitReset(resp.Header.Get("x-rate-limit-reset"))
		f.limiter.MarkRateLimited(endpoint, until)
		slog.Warn("endpoint rate limited",
			slog.String("endpoint", endpoint),
			slog.Time("until", until))
		return nil, newAPIError(endpoint, resp.StatusCode, body)

	case resp.StatusCode != http.StatusOK:
		f.recordAPICall(endpoint, false, false)
		slog.Warn("doGET non-200", slog.String("endpoint", endpoint), slog.Int("status", resp.StatusCode), slog.String("body", truncateBytes(body, 500)))
		return nil, newAPIError(endpoint, resp.StatusCode, body)
	}

	f.recordAPICall(endpoint, true, false)
	return body, nil
}

// recordAPICall calls the metrics hook if configured.
func (f *Fetcher) recordAPICall(endpoint string, success, rateLimited bool) {
	if f.cfg.MetricsHook != nil {
		f.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
