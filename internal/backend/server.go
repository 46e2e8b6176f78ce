// Package backend is a development implementation of the comment backend:
// GET/POST /data, POST /delete-comments and GET /user, backed by SQLite.
package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/evcraddock/comment-panel/internal/auth"
)

// Defaults mirror the production backend.
const (
	DefaultNumComments = 5
	DefaultMinScore    = -0.5
	DefaultPagePath    = "/comments.html"
)

// Options configures the backend.
type Options struct {
	PagePath  string     // page visitors are redirected back to
	MinScore  *float64   // comments scoring below this are rejected; nil means DefaultMinScore
	PostRate  rate.Limit // comment submissions per second per client
	PostBurst int
	Scorer    Scorer
}

func (o *Options) defaults() {
	if o.PagePath == "" {
		o.PagePath = DefaultPagePath
	}
	if o.MinScore == nil {
		threshold := DefaultMinScore
		o.MinScore = &threshold
	}
	if o.PostRate == 0 {
		o.PostRate = rate.Every(10 * time.Second)
	}
	if o.PostBurst == 0 {
		o.PostBurst = 3
	}
	if o.Scorer == nil {
		o.Scorer = NewLexiconScorer()
	}
}

// Server is the development backend HTTP server.
type Server struct {
	store    *Store
	sessions *auth.SessionStore
	opts     Options
	validate *validator.Validate
	limiter  *clientLimiter
	now      func() time.Time
	mux      *http.ServeMux
}

// NewServer creates a backend server over the given database.
func NewServer(db *sql.DB, opts Options) *Server {
	opts.defaults()

	s := &Server{
		store:    NewStore(db),
		sessions: auth.NewSessionStore(db),
		opts:     opts,
		validate: validator.New(),
		limiter:  newClientLimiter(opts.PostRate, opts.PostBurst),
		now:      time.Now,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/data", s.handleData)
	s.mux.HandleFunc("/delete-comments", s.handleDeleteComments)
	s.mux.HandleFunc("/user", s.handleUser)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/logout", s.handleLogout)
	s.mux.HandleFunc("/health", s.handleHealth)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(handler http.Handler, port int) error {
	addr := fmt.Sprintf(":%d", port)
	slog.Info("starting development backend", "addr", "http://localhost"+addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Server) PurgeExpiredSessions(ctx context.Context) error {
	return s.sessions.Cleanup(ctx)
}

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
