package backend

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evcraddock/comment-panel/internal/comment"
)

// Store provides comment persistence for the development backend.
type Store struct {
	db *sql.DB
}

// NewStore creates a comment store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListOptions controls ordering and size for List.
type ListOptions struct {
	Limit     int
	SortField comment.SortField
	Ascending bool
}

// Add stores a new comment and returns it with its ID.
func (s *Store) Add(c comment.Comment) (*comment.Comment, error) {
	if strings.TrimSpace(c.Message) == "" {
		return nil, fmt.Errorf("comment message is required")
	}

	result, err := s.db.Exec(
		"INSERT INTO comments (name, email, message, score, timestamp) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.Email, c.Message, c.SentimentScore, c.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	c.ID = id
	return &c, nil
}

// List returns up to opts.Limit comments in the requested order.
func (s *Store) List(opts ListOptions) (comments []*comment.Comment, err error) {
	// Column and direction come from fixed strings, never from the request.
	column := "timestamp"
	switch opts.SortField {
	case comment.SortName:
		column = "name"
	case comment.SortSentiment:
		column = "score"
	}
	dir := "DESC"
	if opts.Ascending {
		dir = "ASC"
	}

	rows, err := s.db.Query(
		fmt.Sprintf("SELECT id, name, email, message, score, timestamp FROM comments ORDER BY %s %s, id %s LIMIT ?", column, dir, dir),
		opts.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "error", closeErr)
		}
	}()

	comments = []*comment.Comment{}
	for rows.Next() {
		var c comment.Comment
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.SentimentScore, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// DeleteAll removes every comment and returns how many were removed.
func (s *Store) DeleteAll() (int64, error) {
	result, err := s.db.Exec("DELETE FROM comments")
	if err != nil {
		return 0, fmt.Errorf("deleting comments: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
