// Package display renders post records for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	tagpoll "github.com/anatolykoptev/go-tagpoll"
)

const separator = " • "

// TerminalFormatter formats records for terminal display.
type TerminalFormatter struct {
	// MaxTextLen truncates post text; 0 disables truncation.
	MaxTextLen int
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{MaxTextLen: 280}
}

// FormatRecord formats a single record for display.
func (f *TerminalFormatter) FormatRecord(r tagpoll.Record) string {
	var lines []string

	// Header: @handle • timestamp
	lines = append(lines, r.Username+separator+r.Timestamp)

	text := strings.TrimSpace(r.Text)
	if f.MaxTextLen > 0 {
		text = TruncateText(text, f.MaxTextLen)
	}
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, "  "+l)
	}

	if engagement := formatEngagement(r); engagement != "" {
		lines = append(lines, "  "+engagement)
	}

	lines = append(lines, "  "+r.Permalink())

	return strings.Join(lines, "\n") + "\n"
}

// formatEngagement formats engagement stats into a single line.
func formatEngagement(r tagpoll.Record) string {
	var parts []string

	if r.LikeCount > 0 {
		parts = append(parts, pluralize(r.LikeCount, "like"))
	}
	if r.RetweetCount > 0 {
		parts = append(parts, pluralize(r.RetweetCount, "repost"))
	}
	if r.UserFollowers > 0 {
		parts = append(parts, pluralize(r.UserFollowers, "follower"))
	}

	return strings.Join(parts, separator)
}

// FormatRecords formats multiple records for display.
func (f *TerminalFormatter) FormatRecords(records []tagpoll.Record) string {
	if len(records) == 0 {
		return "No posts found.\n"
	}

	var formatted []string
	for _, r := range records {
		formatted = append(formatted, f.FormatRecord(r))
	}

	return strings.Join(formatted, "\n---\n\n")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func TruncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// WriteJSON writes records as one JSON object per line.
func WriteJSON(w io.Writer, records []tagpoll.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}
	return nil
}
