package tagpoll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStealthFetcher builds a Fetcher on the default browser transport.
func newStealthFetcher(t *testing.T, cfg ClientConfig, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	f, err := NewFetcher(bearerOnly, cfg)
	require.NoError(t, err)
	return f
}

// slowHandler blocks until the client goes away or the test ends.
func slowHandler(t *testing.T) http.HandlerFunc {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}
}

func TestStealthTransport_SendsHeaders(t *testing.T) {
	var got http.Header
	f := newStealthFetcher(t, ClientConfig{Hashtag: "#go"}, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		jsonHandler(200, twoPostsBody)(w, r)
	})

	records, err := f.Search(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "@gopher", records[0].Username)

	assert.Equal(t, "Bearer test-bearer", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.True(t, strings.HasPrefix(got.Get("User-Agent"), "Mozilla/5.0"))
}

func TestStealthTransport_RateLimitReset(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	f := newStealthFetcher(t, ClientConfig{Hashtag: "#go"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", strconv.FormatInt(reset.Unix(), 10))
		jsonHandler(429, `{"title":"Too Many Requests","type":"about:blank","status":429}`)(w, r)
	})

	_, err := f.Search(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.WithinDuration(t, reset, f.RateLimitedUntil(), time.Second)
}

func TestStealthTransport_HonorsContextDeadline(t *testing.T) {
	f := newStealthFetcher(t, ClientConfig{Hashtag: "#go"}, slowHandler(t))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Search(ctx, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStealthTransport_HonorsClientTimeout(t *testing.T) {
	f := newStealthFetcher(t, ClientConfig{Hashtag: "#go", Timeout: 200 * time.Millisecond}, slowHandler(t))

	start := time.Now()
	_, err := f.Search(context.Background(), 10)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStealthTransport_CanceledContext(t *testing.T) {
	f := newStealthFetcher(t, ClientConfig{Hashtag: "#go"}, slowHandler(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	records := f.FetchRecent(ctx, 10)
	assert.Empty(t, records)
	assert.Less(t, time.Since(start), 2*time.Second)
}
