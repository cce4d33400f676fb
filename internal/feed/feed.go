// Package feed renders post records as an Atom or RSS document.
package feed

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	tagpoll "github.com/anatolykoptev/go-tagpoll"
)

// Format selects the syndication format.
type Format string

const (
	Atom Format = "atom"
	RSS  Format = "rss"
)

// Build renders records for hashtag in the given format.
func Build(hashtag string, records []tagpoll.Record, format Format, now time.Time) (string, error) {
	slog.Debug("Generating feed", slog.Int("itemCount", len(records)), slog.String("format", string(format)))

	tag := strings.TrimPrefix(hashtag, "#")
	f := &feeds.Feed{
		Title:       "Posts tagged " + hashtag,
		Description: "Recent posts matching " + tagpoll.BuildQuery(hashtag),
		Link:        &feeds.Link{Href: "https://x.com/hashtag/" + tag, Rel: "self", Type: "text/html"},
		Id:          fmt.Sprintf("tag:x.com,%d:hashtag/%s", now.Year(), tag),
		Created:     now,
		Updated:     now,
	}

	for _, r := range records {
		link := r.Permalink()
		f.Items = append(f.Items, &feeds.Item{
			Title:       r.Username + ": " + firstLine(r.Text),
			Link:        &feeds.Link{Href: link, Rel: "alternate", Type: "text/html"},
			Id:          link,
			Author:      &feeds.Author{Name: r.Username},
			Description: describe(r),
			Created:     parseTimestamp(r.Timestamp, now),
		})
	}

	switch format {
	case Atom:
		return f.ToAtom()
	case RSS:
		return f.ToRss()
	}
	return "", fmt.Errorf("unknown feed format %q", format)
}

func describe(r tagpoll.Record) string {
	return fmt.Sprintf(`<p>%s</p><p>%d likes • %d reposts • %d followers</p>`,
		html.EscapeString(r.Text), r.LikeCount, r.RetweetCount, r.UserFollowers)
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if len([]rune(line)) > 80 {
		return string([]rune(line)[:77]) + "..."
	}
	return line
}

// parseTimestamp reads a Record timestamp, falling back to now.
func parseTimestamp(ts string, now time.Time) time.Time {
	t, err := time.ParseInLocation(tagpoll.TimestampLayout, ts, time.UTC)
	if err != nil {
		slog.Warn("Failed to parse timestamp, using current time", slog.Any("error", err), slog.String("timestamp", ts))
		return now
	}
	return t
}
