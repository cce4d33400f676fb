package tagpoll

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrRateLimited    = errors.New("rate limited")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUsageCapped    = errors.New("usage capped")
	ErrNotFound       = errors.New("not found")
	ErrServer         = errors.New("server error")
)

// ClientInitError wraps a failure to build the underlying API client.
type ClientInitError struct {
	Err error
}

func (e *ClientInitError) Error() string {
	return "initialize Twitter v2 client: " + e.Err.Error()
}

func (e *ClientInitError) Unwrap() error { return e.Err }

// errorClass categorizes v2 API error responses for targeted handling.
type errorClass int

const (
	errNone           errorClass = iota
	errRateLimited               // 429, problems/rate-limit
	errUnauthorized              // 401, bad or revoked credentials
	errForbidden                 // 403, client-forbidden / not-authorized-for-resource
	errInvalidRequest            // 400, problems/invalid-request
	errUsageCapped               // problems/usage-capped, monthly cap reached
	errNotFound                  // 404, problems/resource-not-found
	errServer                    // 5xx
)

func (c errorClass) sentinel() error {
	switch c {
	case errRateLimited:
		return ErrRateLimited
	case errUnauthorized:
		return ErrUnauthorized
	case errForbidden:
		return ErrForbidden
	case errInvalidRequest:
		return ErrInvalidRequest
	case errUsageCapped:
		return ErrUsageCapped
	case errNotFound:
		return ErrNotFound
	case errServer:
		return ErrServer
	}
	return nil
}

// problem is the RFC 7807 body the v2 API returns on failure.
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Status int    `json:"status"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// classifyError inspects the status and problem type of a failed response.
func classifyError(status int, body []byte) (errorClass, problem) {
	var p problem
	_ = json.Unmarshal(body, &p)

	switch {
	case strings.HasSuffix(p.Type, "/usage-capped"):
		return errUsageCapped, p
	case strings.HasSuffix(p.Type, "/rate-limit"):
		return errRateLimited, p
	case strings.HasSuffix(p.Type, "/invalid-request"):
		return errInvalidRequest, p
	case strings.HasSuffix(p.Type, "/resource-not-found"):
		return errNotFound, p
	case strings.HasSuffix(p.Type, "/client-forbidden"),
		strings.HasSuffix(p.Type, "/not-authorized-for-resource"):
		return errForbidden, p
	}

	switch {
	case status == 429:
		return errRateLimited, p
	case status == 401:
		return errUnauthorized, p
	case status == 403:
		return errForbidden, p
	case status == 400:
		return errInvalidRequest, p
	case status == 404:
		return errNotFound, p
	case status >= 500:
		return errServer, p
	}
	return errNone, p
}

// APIError is a non-200 response from the v2 API.
type APIError struct {
	Endpoint string
	Status   int
	Title    string
	Detail   string
	class    errorClass
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	class, p := classifyError(status, body)
	detail := p.Detail
	if detail == "" && len(p.Errors) > 0 {
		detail = p.Errors[0].Message
	}
	if detail == "" && p.Title == "" {
		detail = truncateBytes(body, 200)
	}
	return &APIError{
		Endpoint: endpoint,
		Status:   status,
		Title:    p.Title,
		Detail:   detail,
		class:    class,
	}
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s HTTP %d", e.Endpoint, e.Status)
	if e.Title != "" {
		msg += ": " + e.Title
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.class.sentinel() }

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
