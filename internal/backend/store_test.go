package backend

import (
	"path/filepath"
	"testing"

	"github.com/evcraddock/comment-panel/internal/comment"
	"github.com/evcraddock/comment-panel/internal/db"
)

func TestAddAndList(t *testing.T) {
	store := testStore(t)

	c, err := store.Add(comment.Comment{Name: "Ann", Email: "ann@example.com", Message: "Nice portfolio", Timestamp: 1000, SentimentScore: 0.5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.ID == 0 {
		t.Error("expected non-zero ID")
	}

	comments, err := store.List(ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	got := comments[0]
	if got.Name != "Ann" || got.Email != "ann@example.com" || got.Message != "Nice portfolio" || got.SentimentScore != 0.5 || got.Timestamp != 1000 {
		t.Errorf("comment = %+v", got)
	}
}

func TestAddEmptyMessage(t *testing.T) {
	store := testStore(t)

	if _, err := store.Add(comment.Comment{Name: "Ann", Message: "   "}); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestListEmpty(t *testing.T) {
	store := testStore(t)

	comments, err := store.List(ListOptions{Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", comments)
	}
}

func TestListOrdering(t *testing.T) {
	store := testStore(t)
	seed := []comment.Comment{
		{Name: "bea", Message: "one", Timestamp: 1, SentimentScore: 0.9},
		{Name: "cal", Message: "two", Timestamp: 2, SentimentScore: -0.3},
		{Name: "abe", Message: "three", Timestamp: 3, SentimentScore: 0.1},
	}
	for _, c := range seed {
		if _, err := store.Add(c); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"newest first", ListOptions{Limit: 5}, []string{"three", "two", "one"}},
		{"oldest first", ListOptions{Limit: 5, Ascending: true}, []string{"one", "two", "three"}},
		{"by name", ListOptions{Limit: 5, SortField: comment.SortName, Ascending: true}, []string{"three", "one", "two"}},
		{"by sentiment", ListOptions{Limit: 5, SortField: comment.SortSentiment}, []string{"one", "three", "two"}},
		{"limited", ListOptions{Limit: 2}, []string{"three", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments, err := store.List(tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(comments) != len(tt.want) {
				t.Fatalf("got %d comments, want %d", len(comments), len(tt.want))
			}
			for i, want := range tt.want {
				if comments[i].Message != want {
					t.Errorf("comment %d = %q, want %q", i, comments[i].Message, want)
				}
			}
		})
	}
}

func TestDeleteAll(t *testing.T) {
	store := testStore(t)
	for _, msg := range []string{"a", "b"} {
		if _, err := store.Add(comment.Comment{Message: msg, Timestamp: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	n, err := store.DeleteAll()
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	// Deleting nothing is not an error.
	if _, err := store.DeleteAll(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewStore(d)
}
