package tagpoll

import (
	"fmt"
	"strings"
)

// Environment variable names holding API credentials.
const (
	EnvBearerToken       = "TWITTER_BEARER_TOKEN"
	EnvAPIKey            = "TWITTER_API_KEY"
	EnvAPISecret         = "TWITTER_API_SECRET"
	EnvAccessToken       = "TWITTER_ACCESS_TOKEN"
	EnvAccessTokenSecret = "TWITTER_ACCESS_TOKEN_SECRET"
)

// AuthScheme identifies how requests are authorized.
type AuthScheme int

const (
	AuthBearer AuthScheme = iota + 1
	AuthOAuth1
)

func (s AuthScheme) String() string {
	switch s {
	case AuthBearer:
		return "bearer"
	case AuthOAuth1:
		return "oauth1"
	}
	return "unknown"
}

// OAuth1Credentials is the OAuth 1.0a user-context key set.
type OAuth1Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four values are present.
func (o OAuth1Credentials) Complete() bool {
	return o.ConsumerKey != "" && o.ConsumerSecret != "" &&
		o.AccessToken != "" && o.AccessTokenSecret != ""
}

// Credentials holds either a bearer token or an OAuth1 key set.
// Values are kept in memory only and must never be logged.
type Credentials struct {
	BearerToken string
	OAuth1      OAuth1Credentials
}

// LoadCredentials reads credentials through getenv, usually os.Getenv.
func LoadCredentials(getenv func(string) string) Credentials {
	return Credentials{
		BearerToken: getenv(EnvBearerToken),
		OAuth1: OAuth1Credentials{
			ConsumerKey:       getenv(EnvAPIKey),
			ConsumerSecret:    getenv(EnvAPISecret),
			AccessToken:       getenv(EnvAccessToken),
			AccessTokenSecret: getenv(EnvAccessTokenSecret),
		},
	}
}

// Validate returns a *ConfigurationError unless the bearer token or the
// complete OAuth1 set is present.
func (c Credentials) Validate() error {
	if c.BearerToken != "" || c.OAuth1.Complete() {
		return nil
	}
	var missing []string
	if c.BearerToken == "" {
		missing = append(missing, EnvBearerToken)
	}
	if c.OAuth1.ConsumerKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if c.OAuth1.ConsumerSecret == "" {
		missing = append(missing, EnvAPISecret)
	}
	if c.OAuth1.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if c.OAuth1.AccessTokenSecret == "" {
		missing = append(missing, EnvAccessTokenSecret)
	}
	return &ConfigurationError{Missing: missing}
}

// Scheme returns the scheme a client built from c would use.
// Bearer wins when both are configured.
func (c Credentials) Scheme() AuthScheme {
	if c.BearerToken != "" {
		return AuthBearer
	}
	return AuthOAuth1
}

// ConfigurationError reports missing credential values.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required Twitter API credentials. Need either %s or OAuth credentials: %s",
		EnvBearerToken, strings.Join(e.Missing, ", "))
}
