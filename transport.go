package tagpoll

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// defaultUserAgent is sent when the request carries no User-Agent.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// apiHeaderOrder is the header order for TLS fingerprint consistency.
var apiHeaderOrder = []string{
	"authorization",
	"accept",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"user-agent",
	"accept-language",
	"accept-encoding",
}

// apiHeaders returns the base headers sent with every API request.
func apiHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	h := map[string]string{
		"accept":          "application/json",
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      userAgent,
	}
	if ch := stealth.ClientHintsHeaders(userAgent); ch != nil {
		for k, v := range ch {
			h[k] = v
		}
	}
	return h
}

// stealthTransport is the http.RoundTripper the OAuth clients sign on top of.
// Unlike BrowserClient.RoundTrip it keeps apiHeaderOrder and the client hints,
// and it returns as soon as the request context is done.
type stealthTransport struct {
	client *stealth.BrowserClient
}

func newStealthTransport(proxy string, timeout time.Duration) (*stealthTransport, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(apiHeaderOrder),
	}
	if timeout > 0 {
		// Rounded up: the backend only takes whole seconds.
		opts = append(opts, stealth.WithTimeout(int((timeout+time.Second-1)/time.Second)))
	}
	if proxy != "" {
		opts = append(opts, stealth.WithProxy(proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &stealthTransport{client: bc}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *stealthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	headers := apiHeaders(req.Header.Get("User-Agent"))
	for k, v := range req.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	var body io.Reader
	if req.Body != nil {
		defer req.Body.Close()
		body = req.Body
	}

	respBody, respHdrs, status, err := t.client.DoWithHeaderOrderCtx(req.Context(), req.Method, req.URL.String(), headers, body, apiHeaderOrder)
	if err != nil {
		return nil, err
	}

	h := make(http.Header, len(respHdrs))
	for k, v := range respHdrs {
		h.Set(k, v)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(respBody)),
		ContentLength: int64(len(respBody)),
		Request:       req,
	}, nil
}
