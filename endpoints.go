package tagpoll

import (
	"net/url"
	"strconv"
	"strings"
)

const apiBaseURL = "https://api.twitter.com"

// Endpoint names used for rate limiting, metrics and error messages.
const endpointSearchRecent = "SearchRecent"

const searchRecentPath = "/2/tweets/search/recent"

// Bounds the recent search endpoint accepts for max_results.
const (
	minMaxResults = 10
	maxMaxResults = 100
)

var (
	tweetFields = []string{"created_at", "public_metrics", "text", "author_id"}
	userFields  = []string{"username", "name", "profile_image_url", "public_metrics"}
	expansions  = []string{"author_id"}
)

// BuildQuery returns the recent search query for hashtag with reposts excluded.
func BuildQuery(hashtag string) string {
	return hashtag + " -is:retweet"
}

// clampMaxResults maps a requested count onto the range the API accepts.
func clampMaxResults(count int) int {
	return min(max(count, minMaxResults), maxMaxResults)
}

// searchRecentURL builds the full recent search URL.
func searchRecentURL(base *url.URL, query string, maxResults int) string {
	u := base.JoinPath(searchRecentPath)
	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("tweet.fields", strings.Join(tweetFields, ","))
	q.Set("user.fields", strings.Join(userFields, ","))
	q.Set("expansions", strings.Join(expansions, ","))
	u.RawQuery = q.Encode()
	return u.String()
}
