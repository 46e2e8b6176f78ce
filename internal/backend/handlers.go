package backend

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/evcraddock/comment-panel/internal/auth"
	"github.com/evcraddock/comment-panel/internal/comment"
	"github.com/evcraddock/comment-panel/internal/logging"
)

// Rejection reasons beyond the ones the panel maps to specific messages.
const (
	reasonLogin   = "login"
	reasonLimit   = "limit"
	reasonInvalid = "invalid"
	reasonError   = "error"
)

// submission is a posted comment form.
type submission struct {
	Name    string `validate:"max=100"`
	Message string `validate:"required,max=2000"`
}

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><title>Log in</title></head>
<body>
<form action="/login" method="POST">
  <input type="hidden" name="next" value="{{.Next}}">
  <label for="email">Email</label>
  <input type="email" id="email" name="email" required>
  <button type="submit">Log in</button>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
</form>
</body></html>
`))

// handleData routes /data requests.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListComments(w, r)
	case http.MethodPost:
		s.handlePostComment(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListComments serves GET /data.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r.URL.Query())

	comments, err := s.store.List(opts)
	if err != nil {
		slog.Error("listing comments", "error", err)
		apiError(w, "failed to list comments", http.StatusInternalServerError)
		return
	}

	apiJSON(w, comments, http.StatusOK)
}

// listOptionsFromQuery applies the backend's defaults to the filter parameters:
// an unparsable count means 5, a negative one means 1, unknown sort fields sort
// by timestamp, and anything but an ascending order sorts newest first.
func listOptionsFromQuery(q url.Values) ListOptions {
	limit, err := strconv.Atoi(q.Get(comment.ParamNumComments))
	if err != nil {
		limit = DefaultNumComments
	} else if limit < 0 {
		limit = 1
	}

	field := comment.SortTimestamp
	switch comment.SortField(strings.ToLower(q.Get(comment.ParamSortValue))) {
	case comment.SortName:
		field = comment.SortName
	case comment.SortSentiment:
		field = comment.SortSentiment
	}

	order := strings.ToLower(q.Get(comment.ParamSortOrder))
	return ListOptions{
		Limit:     limit,
		SortField: field,
		Ascending: order == string(comment.Ascending) || order == "ascending",
	}
}

// handlePostComment serves POST /data from the comment form.
func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.allow(r) {
		s.redirectRejected(w, r, reasonLimit)
		return
	}

	email, err := s.sessions.Validate(r)
	if errors.Is(err, auth.ErrNoSession) {
		s.redirectRejected(w, r, reasonLogin)
		return
	}
	if err != nil {
		slog.Error("validating session", "error", err)
		s.redirectRejected(w, r, reasonError)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.redirectRejected(w, r, reasonInvalid)
		return
	}
	sub := submission{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	if sub.Message == "" {
		s.redirectRejected(w, r, comment.ReasonTokenEmpty)
		return
	}
	if err := s.validate.Struct(sub); err != nil {
		slog.Info("rejecting invalid comment", "error", err)
		s.redirectRejected(w, r, reasonInvalid)
		return
	}

	score, err := s.opts.Scorer.Score(r.Context(), sub.Message)
	if err != nil {
		slog.Error("scoring comment", "error", err)
		s.redirectRejected(w, r, reasonError)
		return
	}
	if score < *s.opts.MinScore {
		slog.Info("rejecting low sentiment comment", "score", score)
		s.redirectRejected(w, r, comment.ReasonTokenScore)
		return
	}

	c, err := s.store.Add(comment.Comment{
		Name:           sub.Name,
		Email:          email,
		Message:        sub.Message,
		Timestamp:      s.now().UnixMilli(),
		SentimentScore: score,
	})
	if err != nil {
		slog.Error("storing comment", "error", err)
		s.redirectRejected(w, r, reasonError)
		return
	}

	slog.Info("comment posted", "id", c.ID, "score", score)
	logging.Annotate(r.Context(), "comment_id", c.ID)
	http.Redirect(w, r, s.opts.PagePath, http.StatusSeeOther)
}

func (s *Server) redirectRejected(w http.ResponseWriter, r *http.Request, reason string) {
	logging.Annotate(r.Context(), "rejected", reason)
	q := url.Values{}
	q.Set(comment.ParamCommentPosted, "false")
	q.Set(comment.ParamReason, reason)
	http.Redirect(w, r, s.opts.PagePath+"?"+q.Encode(), http.StatusSeeOther)
}

// handleDeleteComments serves POST /delete-comments.
func (s *Server) handleDeleteComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n, err := s.store.DeleteAll()
	if err != nil {
		slog.Error("deleting comments", "error", err)
		apiError(w, "failed to delete comments", http.StatusInternalServerError)
		return
	}

	slog.Info("comments deleted", "count", n)
	apiJSON(w, map[string]int64{"deleted": n}, http.StatusOK)
}

// handleUser serves GET /user.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	next := url.QueryEscape(s.opts.PagePath)
	status := auth.Status{URL: "/login?next=" + next}
	if _, err := s.sessions.Validate(r); err == nil {
		status = auth.Status{IsLoggedIn: true, URL: "/logout?next=" + next}
	} else if !errors.Is(err, auth.ErrNoSession) {
		slog.Warn("validating session", "error", err)
	}

	apiJSON(w, status, http.StatusOK)
}

// handleLogin shows the login form or starts a session for the posted email.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := s.safeNext(r.FormValue("next"))

	switch r.Method {
	case http.MethodGet:
		s.renderLogin(w, next, "", http.StatusOK)
	case http.MethodPost:
		email := strings.TrimSpace(r.PostFormValue("email"))
		if err := s.validate.Var(email, "required,email"); err != nil {
			s.renderLogin(w, next, "Please enter a valid email address.", http.StatusBadRequest)
			return
		}
		if err := s.sessions.Create(r.Context(), w, email); err != nil {
			slog.Error("creating session", "error", err)
			http.Error(w, "could not log in", http.StatusInternalServerError)
			return
		}
		slog.Info("visitor logged in", "email", email)
		http.Redirect(w, r, next, http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLogout ends the session and returns to the page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Destroy(w, r); err != nil {
		slog.Error("destroying session", "error", err)
	}
	http.Redirect(w, r, s.safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, next, errMsg string, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	data := struct{ Next, Error string }{next, errMsg}
	if err := loginTmpl.Execute(w, data); err != nil {
		slog.Error("rendering login page", "error", err)
	}
}

// safeNext only allows local redirect targets.
func (s *Server) safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return s.opts.PagePath
	}
	return next
}
