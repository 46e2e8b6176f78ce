// Package comment provides the comment domain model shared by the panel and its backend.
package comment

import (
	"fmt"
	"time"
)

// AnonymousName is shown when a comment carries neither a name nor an email.
const AnonymousName = "Anonymous"

// Comment is a visitor comment as served by GET /data.
type Comment struct {
	ID             int64   `json:"id,omitempty"`
	Name           string  `json:"name,omitempty"`
	Email          string  `json:"email,omitempty"`
	Message        string  `json:"message"`
	Timestamp      int64   `json:"timestamp"` // epoch milliseconds
	SentimentScore float64 `json:"sentimentScore"`
}

// DisplayName returns the author name, falling back to the email.
func (c *Comment) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Email != "" {
		return c.Email
	}
	return AnonymousName
}

// Time returns the comment timestamp as a time.Time in loc.
func (c *Comment) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(c.Timestamp).In(loc)
}

// FormatTimestamp formats t as M-D-YYYY H:M:S with no zero padding.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d %d:%d:%d",
		int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute(), t.Second())
}

// FormatScore renders a sentiment score the way it appears after a message.
func FormatScore(score float64) string {
	return fmt.Sprintf("(%v)", score)
}
