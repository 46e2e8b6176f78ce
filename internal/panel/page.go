// Package panel renders the comment panel into an HTML document: filter
// controls, the comment list, the login-gated form and the rejection notice.
package panel

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

//go:embed templates/comments.html
var templateFS embed.FS

// Element ids the host page must expose.
const (
	IDCommentsList = "comments-list"
	IDFilterPanel  = "filter-panel"
	IDLoginStatus  = "login-status"
	IDCommentForm  = "comment-form"
	IDNotice       = "notice"
)

var requiredIDs = []string{IDCommentsList, IDFilterPanel, IDLoginStatus, IDCommentForm, IDNotice}

// ErrMissingElement is returned when the page lacks an element the panel needs.
var ErrMissingElement = errors.New("missing page element")

// DefaultAvatar is the placeholder image shown next to every comment.
const DefaultAvatar = "/static/avatar.svg"

// Page is one rendering of the comment panel. It is safe for concurrent use;
// the comment list is the only region mutated by more than one caller.
type Page struct {
	mu     sync.Mutex
	doc    *goquery.Document
	loc    *time.Location
	avatar string
}

// Option configures a Page.
type Option func(*Page)

// WithLocation sets the time zone comment timestamps are shown in.
func WithLocation(loc *time.Location) Option {
	return func(p *Page) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithAvatar sets the placeholder avatar URL.
func WithAvatar(src string) Option {
	return func(p *Page) {
		if src != "" {
			p.avatar = src
		}
	}
}

// NewPage parses r as the host page and checks that every required element exists.
func NewPage(r io.Reader, opts ...Option) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	for _, id := range requiredIDs {
		if doc.Find("#" + id).Length() == 0 {
			return nil, fmt.Errorf("%w: #%s", ErrMissingElement, id)
		}
	}

	p := &Page{
		doc:    doc,
		loc:    time.Local,
		avatar: DefaultAvatar,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DefaultPage returns a Page built from the embedded comments template.
func DefaultPage(opts ...Option) (*Page, error) {
	data, err := templateFS.ReadFile("templates/comments.html")
	if err != nil {
		return nil, fmt.Errorf("reading page template: %w", err)
	}
	return NewPage(bytes.NewReader(data), opts...)
}

// HTML renders the whole document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	html, err := p.doc.Html()
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return html, nil
}

// WriteTo writes the rendered document to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	html, err := p.HTML()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, html)
	return int64(n), err
}

// find returns the element with the given id. Callers hold p.mu.
func (p *Page) find(id string) *goquery.Selection {
	return p.doc.Find("#" + id)
}
