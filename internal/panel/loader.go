package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/comment-panel/internal/auth"
	"github.com/evcraddock/comment-panel/internal/comment"
)

// DeletePrompt is the question put to the visitor before deleting all comments.
const DeletePrompt = "Are you sure you want to delete all comments? This action is irreversible!"

// ErrSuperseded is returned by Refresh when a newer refresh was issued before
// this one completed. Its result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Backend is the part of the comment backend the panel talks to.
type Backend interface {
	FetchComments(ctx context.Context, criteria comment.FilterCriteria) ([]*comment.Comment, error)
	DeleteAllComments(ctx context.Context) error
	FetchSessionState(ctx context.Context) (*auth.Status, error)
}

// Confirmer asks the visitor a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Loader wires a Page to a Backend.
type Loader struct {
	backend Backend
	page    *Page
	logger  *slog.Logger

	// issued is the sequence number of the most recent refresh.
	issued atomic.Uint64
	// renderMu makes the "still latest?" check and the render atomic.
	renderMu sync.Mutex
}

// NewLoader creates a loader for page.
func NewLoader(backend Backend, page *Page, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{backend: backend, page: page, logger: logger}
}

// Page returns the page the loader renders into.
func (l *Loader) Page() *Page {
	return l.page
}

// Load runs the page-load sequence: report a rejected submission, then fetch
// comments and session state concurrently. Each fetch updates its own region
// of the page whether or not the other fails. The first failure is returned.
func (l *Loader) Load(ctx context.Context, pageURL *url.URL) error {
	if msg, ok := l.page.ReportIfRejected(pageURL); ok {
		l.logger.Info("previous comment rejected", "notice", msg)
	}

	var g errgroup.Group
	g.Go(func() error {
		err := l.Refresh(ctx)
		if errors.Is(err, ErrSuperseded) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return l.RefreshSession(ctx)
	})
	return g.Wait()
}

// Refresh fetches comments with the page's current filter and renders them,
// unless a newer Refresh was issued in the meantime.
func (l *Loader) Refresh(ctx context.Context) error {
	criteria := l.page.BuildFilterCriteria()
	seq := l.issued.Add(1)

	comments, err := l.backend.FetchComments(ctx, criteria)

	l.renderMu.Lock()
	defer l.renderMu.Unlock()

	if seq != l.issued.Load() {
		l.logger.Debug("discarding stale comments response", "seq", seq, "latest", l.issued.Load())
		return ErrSuperseded
	}

	if err != nil {
		l.page.ShowUnavailable()
		l.logger.Warn("fetching comments", "error", err)
		return fmt.Errorf("fetching comments: %w", err)
	}

	l.page.Render(comments)
	l.logger.Debug("rendered comments", "count", len(comments), "seq", seq)
	return nil
}

// RefreshSession fetches the session state and applies it. On failure the
// form stays hidden.
func (l *Loader) RefreshSession(ctx context.Context) error {
	status, err := l.backend.FetchSessionState(ctx)
	if err != nil {
		l.page.ApplySessionState(nil)
		l.logger.Warn("fetching session state", "error", err)
		return fmt.Errorf("fetching session state: %w", err)
	}
	l.page.ApplySessionState(status)
	return nil
}

// DeleteAll asks for confirmation, then clears the list immediately and sends
// the delete in the background. A failed delete is logged and the list is not
// restored. The returned channel yields the delete result once; callers may
// ignore it. ok is false when the visitor declined.
func (l *Loader) DeleteAll(ctx context.Context, c Confirmer) (done <-chan error, ok bool) {
	if c == nil || !c.Confirm(DeletePrompt) {
		return nil, false
	}

	l.renderMu.Lock()
	// In-flight refreshes would otherwise repopulate the list.
	l.issued.Add(1)
	l.page.Render(nil)
	l.renderMu.Unlock()

	result := make(chan error, 1)
	go func() {
		err := l.backend.DeleteAllComments(context.WithoutCancel(ctx))
		if err != nil {
			l.logger.Warn("deleting comments", "error", err)
		} else {
			l.logger.Info("comments deleted")
		}
		result <- err
	}()
	return result, true
}
