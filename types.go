package tagpoll

import (
	"strings"
	"time"
)

// Record is the flat, display-ready shape of a single post.
type Record struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	UserFollowers int    `json:"user_followers"`
	RetweetCount  int    `json:"retweet_count"`
	LikeCount     int    `json:"like_count"`
}

// Permalink returns the public URL of the post.
func (r Record) Permalink() string {
	if r.Username == "" || r.Username == UnknownUser {
		return "https://x.com/i/web/status/" + r.ID
	}
	return "https://x.com/" + strings.TrimPrefix(r.Username, "@") + "/status/" + r.ID
}

// Post is a post as returned in the data array of a v2 search response.
type Post struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	CreatedAt     *time.Time   `json:"created_at,omitempty"`
	AuthorID      string       `json:"author_id"`
	PublicMetrics *PostMetrics `json:"public_metrics,omitempty"`
}

// PostMetrics are the public engagement counters of a post.
type PostMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// Author is an entry of the includes.users side table.
type Author struct {
	ID              string         `json:"id"`
	Username        string         `json:"username"`
	Name            string         `json:"name"`
	ProfileImageURL *string        `json:"profile_image_url,omitempty"`
	PublicMetrics   *AuthorMetrics `json:"public_metrics,omitempty"`
}

// AuthorMetrics are the public counters of an account.
type AuthorMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}
