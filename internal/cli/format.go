package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evcraddock/comment-panel/internal/comment"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCommentList prints comments in text format, in the order given.
func printCommentList(w io.Writer, comments []*comment.Comment, loc *time.Location) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(w, "No comments.")
		return err
	}

	for _, c := range comments {
		if _, err := fmt.Fprintf(w, "[%s] %s\n  %s %s\n\n",
			comment.FormatTimestamp(c.Time(loc)), c.DisplayName(),
			indent(c.Message), comment.FormatScore(c.SentimentScore)); err != nil {
			return fmt.Errorf("writing comment: %w", err)
		}
	}

	_, err := fmt.Fprintf(w, "Total: %d comments\n", len(comments))
	return err
}

// indent aligns continuation lines of a multi-line message.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
