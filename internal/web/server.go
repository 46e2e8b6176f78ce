// Package web provides the HTTP server that renders the comment panel.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/evcraddock/comment-panel/internal/client"
	"github.com/evcraddock/comment-panel/internal/logging"
	"github.com/evcraddock/comment-panel/internal/panel"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// PagePath is where the panel is served; the backend redirects here after a post.
const PagePath = "/comments.html"

// Backend paths forwarded unchanged so the page's form and login links work
// on the panel's own origin.
var proxiedPaths = []string{"/data", "/user", "/login", "/logout"}

// Config configures the panel server.
type Config struct {
	BackendURL string
	Location   *time.Location
	Logger     *slog.Logger
}

// Server is the comment panel HTTP server.
type Server struct {
	backend   *client.Client
	loc       *time.Location
	logger    *slog.Logger
	templates *template.Template
	mux       *http.ServeMux
}

// NewServer creates a panel server. It fails if the page template does not
// satisfy the panel's element contract.
func NewServer(cfg Config) (*Server, error) {
	backendURL, err := url.Parse(cfg.BackendURL)
	if err != nil || backendURL.Scheme == "" || backendURL.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", cfg.BackendURL)
	}

	if _, err := panel.DefaultPage(); err != nil {
		return nil, fmt.Errorf("checking page template: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		backend:   client.New(cfg.BackendURL),
		loc:       loc,
		logger:    logger,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(backendURL)
			// Replaces any visitor-supplied X-Forwarded-For with the peer address.
			pr.SetXForwarded()
		},
	}
	for _, p := range proxiedPaths {
		s.mux.Handle(p, proxyHandler(proxy))
	}

	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/delete-comments", s.handleDelete)
	s.mux.HandleFunc(PagePath, s.handlePage)
	s.mux.HandleFunc("/", s.handlePage)

	return s, nil
}

// proxyHandler tags forwarded requests in the request log.
func proxyHandler(proxy http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Annotate(r.Context(), "route", "backend")
		proxy.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server with handler, which usually wraps s.
func (s *Server) ListenAndServe(handler http.Handler, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting comment panel", "addr", "http://localhost"+addr+PagePath)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.logger.Error("encoding health response", "error", err)
	}
}

// render executes a named template.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering template", "template", name, "error", err)
	}
}
