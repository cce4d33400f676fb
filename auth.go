package tagpoll

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
)

// newAuthClient returns an *http.Client that authorizes every request with
// creds on top of base. Bearer is preferred; OAuth 1.0a is the fallback.
func newAuthClient(creds Credentials, base http.RoundTripper) (*http.Client, AuthScheme) {
	baseClient := &http.Client{Transport: base}

	switch creds.Scheme() {
	case AuthBearer:
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
		src := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: creds.BearerToken,
			TokenType:   "Bearer",
		})
		slog.Info("Twitter API v2 client initialized with Bearer Token")
		return oauth2.NewClient(ctx, src), AuthBearer

	default:
		ctx := context.WithValue(context.Background(), oauth1.HTTPClient, baseClient)
		config := oauth1.NewConfig(creds.OAuth1.ConsumerKey, creds.OAuth1.ConsumerSecret)
		token := oauth1.NewToken(creds.OAuth1.AccessToken, creds.OAuth1.AccessTokenSecret)
		slog.Info("Twitter API v2 client initialized with OAuth 1.0a")
		return config.Client(ctx, token), AuthOAuth1
	}
}
