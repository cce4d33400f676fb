package tagpoll

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected errorClass
	}{
		{"ok", 200, `{"data":[]}`, errNone},
		{"rate limit status", 429, `{"title":"Too Many Requests","status":429}`, errRateLimited},
		{"rate limit type", 200, `{"type":"https://api.twitter.com/2/problems/rate-limit"}`, errRateLimited},
		{"unauthorized", 401, `{"title":"Unauthorized","type":"about:blank","status":401,"detail":"Unauthorized"}`, errUnauthorized},
		{"forbidden", 403, `{}`, errForbidden},
		{"client forbidden", 403, `{"type":"https://api.twitter.com/2/problems/client-forbidden"}`, errForbidden},
		{"usage capped", 429, `{"type":"https://api.twitter.com/2/problems/usage-capped"}`, errUsageCapped},
		{"invalid request", 400, `{"type":"https://api.twitter.com/2/problems/invalid-request"}`, errInvalidRequest},
		{"bad request no body", 400, ``, errInvalidRequest},
		{"not found", 404, `{}`, errNotFound},
		{"server", 503, `<html>`, errServer},
		{"unknown", 418, `{invalid`, errNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := classifyError(tt.status, []byte(tt.body))
			if result != tt.expected {
				t.Fatalf("classifyError(%d, %s) = %d, want %d", tt.status, tt.body, result, tt.expected)
			}
		})
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	body := `{"title":"Invalid Request","detail":"One or more parameters to your request was invalid.","type":"https://api.twitter.com/2/problems/invalid-request","errors":[{"message":"max_results must be >= 10"}]}`
	err := newAPIError("SearchRecent", 400, []byte(body))

	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err.Error() != "SearchRecent HTTP 400: Invalid Request: One or more parameters to your request was invalid." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = newAPIError("SearchRecent", 400, []byte(`{"errors":[{"message":"max_results must be >= 10"}]}`))
	if err.Detail != "max_results must be >= 10" {
		t.Fatalf("expected detail from errors array, got %q", err.Detail)
	}
}

func TestParseRateLimitReset(t *testing.T) {
	ts := time.Now().Add(5 * time.Minute).Unix()
	result := parseRateLimitReset(strconv.FormatInt(ts, 10))
	if result.Unix() != ts {
		t.Fatalf("expected %d, got %d", ts, result.Unix())
	}

	// Empty falls back
	result = parseRateLimitReset("")
	if time.Until(result) < 14*time.Minute {
		t.Fatal("expected ~15min fallback")
	}

	// Invalid
	result = parseRateLimitReset("not-a-number")
	if time.Until(result) < 14*time.Minute {
		t.Fatal("expected ~15min fallback for invalid input")
	}
}
