package tagpoll

import (
	"encoding/json"
	"fmt"
	"time"
)

// UnknownUser is the username of records whose author is not in includes.users.
const UnknownUser = "Unknown User"

// TimestampLayout formats Record.Timestamp, always in UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// searchResponse is the body of GET /2/tweets/search/recent.
type searchResponse struct {
	Data     []Post `json:"data"`
	Includes *struct {
		Users []Author `json:"users"`
	} `json:"includes"`
	Meta struct {
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []struct {
		Title        string `json:"title"`
		Detail       string `json:"detail"`
		ResourceType string `json:"resource_type"`
		Value        string `json:"value"`
	} `json:"errors"`
}

// parseSearchRecent parses the recent search response body.
func parseSearchRecent(body []byte) (*searchResponse, error) {
	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal search recent: %w", err)
	}
	return &raw, nil
}

// authorIndex maps author id to author; empty when the response has no includes.
func (r *searchResponse) authorIndex() map[string]*Author {
	idx := make(map[string]*Author)
	if r.Includes == nil {
		return idx
	}
	for i := range r.Includes.Users {
		u := &r.Includes.Users[i]
		idx[u.ID] = u
	}
	return idx
}

// normalize flattens the response into one Record per post, in order.
// now supplies the timestamp of posts without created_at.
func (r *searchResponse) normalize(now time.Time) []Record {
	authors := r.authorIndex()
	records := make([]Record, 0, len(r.Data))
	for i := range r.Data {
		records = append(records, normalizePost(&r.Data[i], authors[r.Data[i].AuthorID], now))
	}
	return records
}

func normalizePost(p *Post, author *Author, now time.Time) Record {
	rec := Record{
		ID:       p.ID,
		Username: UnknownUser,
		Text:     p.Text,
	}

	if author != nil {
		rec.Username = "@" + author.Username
		if author.PublicMetrics != nil {
			rec.UserFollowers = author.PublicMetrics.FollowersCount
		}
	}

	if p.CreatedAt != nil {
		rec.Timestamp = p.CreatedAt.UTC().Format(TimestampLayout)
	} else {
		rec.Timestamp = now.UTC().Format(TimestampLayout)
	}

	if p.PublicMetrics != nil {
		rec.RetweetCount = p.PublicMetrics.RetweetCount
		rec.LikeCount = p.PublicMetrics.LikeCount
	}
	return rec
}
