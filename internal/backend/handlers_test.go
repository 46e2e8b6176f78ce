package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/evcraddock/comment-panel/internal/auth"
	"github.com/evcraddock/comment-panel/internal/comment"
	"github.com/evcraddock/comment-panel/internal/db"
)

type fixedScorer struct {
	score float64
	err   error
}

func (f fixedScorer) Score(context.Context, string) (float64, error) {
	return f.score, f.err
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestListCommentsJSON(t *testing.T) {
	srv := testServer(t, Options{})
	for i, msg := range []string{"first", "second"} {
		if _, err := srv.store.Add(comment.Comment{Email: "ann@example.com", Message: msg, Timestamp: int64(i + 1), SentimentScore: 0.2}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	w := do(srv, httptest.NewRequest("GET", "/data?num-comments=5&sort-value=timestamp&sort-order=desc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("got %d comments, want 2", len(raw))
	}
	if raw[0]["message"] != "second" {
		t.Errorf("first = %v, want newest first", raw[0]["message"])
	}
	for _, key := range []string{"email", "message", "timestamp", "sentimentScore"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("missing %q in %v", key, raw[0])
		}
	}
	if _, ok := raw[0]["name"]; ok {
		t.Error("empty name should be omitted")
	}
}

func TestListCommentsEmptyIsArray(t *testing.T) {
	srv := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/data", nil))
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", w.Body.String())
	}
}

func TestListOptionsFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  ListOptions
	}{
		{"", ListOptions{Limit: 5, SortField: comment.SortTimestamp}},
		{"num-comments=abc", ListOptions{Limit: 5, SortField: comment.SortTimestamp}},
		{"num-comments=-4", ListOptions{Limit: 1, SortField: comment.SortTimestamp}},
		{"num-comments=10&sort-value=name&sort-order=asc", ListOptions{Limit: 10, SortField: comment.SortName, Ascending: true}},
		{"sort-value=SENTIMENT&sort-order=ascending", ListOptions{Limit: 5, SortField: comment.SortSentiment, Ascending: true}},
		{"sort-value=date&sort-order=sideways", ListOptions{Limit: 5, SortField: comment.SortTimestamp}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := listOptionsFromQuery(q); got != tt.want {
				t.Errorf("listOptionsFromQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPostCommentRequiresLogin(t *testing.T) {
	srv := testServer(t, Options{})

	w := do(srv, postForm("/data", url.Values{"message": {"hello"}}, nil))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=login")
}

func TestPostCommentEmpty(t *testing.T) {
	srv := testServer(t, Options{})
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {"   "}}, cookie))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=empty")
}

func TestPostCommentScoreTooLow(t *testing.T) {
	srv := testServer(t, Options{Scorer: fixedScorer{score: -0.8}})
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {"grr"}}, cookie))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=score")

	comments, err := srv.store.List(ListOptions{Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 0 {
		t.Error("rejected comment must not be stored")
	}
}

func TestPostCommentScorerError(t *testing.T) {
	srv := testServer(t, Options{Scorer: fixedScorer{err: errors.New("service down")}})
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {"hello"}}, cookie))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=error")
}

func TestPostCommentTooLong(t *testing.T) {
	srv := testServer(t, Options{})
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {strings.Repeat("a", 2001)}}, cookie))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=invalid")
}

func TestPostCommentStored(t *testing.T) {
	srv := testServer(t, Options{Scorer: fixedScorer{score: 0.6}})
	srv.now = func() time.Time { return time.UnixMilli(1633442589000) }
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {" Lovely site "}}, cookie))
	assertRedirect(t, w, "/comments.html")

	comments, err := srv.store.List(ListOptions{Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	c := comments[0]
	if c.Message != "Lovely site" || c.Email != "ann@example.com" || c.Name != "" {
		t.Errorf("comment = %+v", c)
	}
	if c.Timestamp != 1633442589000 || c.SentimentScore != 0.6 {
		t.Errorf("timestamp/score = %d/%v", c.Timestamp, c.SentimentScore)
	}
	if c.DisplayName() != "ann@example.com" {
		t.Errorf("display name = %q", c.DisplayName())
	}
}

func TestPostCommentRateLimited(t *testing.T) {
	srv := testServer(t, Options{PostRate: rate.Every(time.Hour), PostBurst: 1, Scorer: fixedScorer{}})
	cookie := login(t, srv, "ann@example.com")

	w := do(srv, postForm("/data", url.Values{"message": {"one"}}, cookie))
	assertRedirect(t, w, "/comments.html")

	w = do(srv, postForm("/data", url.Values{"message": {"two"}}, cookie))
	assertRedirect(t, w, "/comments.html?comment-posted=false&reason=limit")
}

func TestPostCommentRateLimitPerForwardedVisitor(t *testing.T) {
	srv := testServer(t, Options{PostRate: rate.Every(time.Hour), PostBurst: 1, Scorer: fixedScorer{}})
	cookie := login(t, srv, "ann@example.com")

	proxied := func(msg, visitor string) *http.Request {
		r := postForm("/data", url.Values{"message": {msg}}, cookie)
		r.RemoteAddr = "127.0.0.1:40000"
		r.Header.Set("X-Forwarded-For", visitor)
		return r
	}

	assertRedirect(t, do(srv, proxied("one", "203.0.113.1")), "/comments.html")
	assertRedirect(t, do(srv, proxied("two", "198.51.100.7")), "/comments.html")
	assertRedirect(t, do(srv, proxied("three", "203.0.113.1")), "/comments.html?comment-posted=false&reason=limit")
}

func TestPostCommentForgedForwardedHeader(t *testing.T) {
	srv := testServer(t, Options{PostRate: rate.Every(time.Hour), PostBurst: 1, Scorer: fixedScorer{}})
	cookie := login(t, srv, "ann@example.com")

	for i, forged := range []string{"10.0.0.1", "10.0.0.2"} {
		r := postForm("/data", url.Values{"message": {"hello"}}, cookie)
		r.RemoteAddr = "203.0.113.1:40000"
		r.Header.Set("X-Forwarded-For", forged)

		want := "/comments.html"
		if i > 0 {
			want = "/comments.html?comment-posted=false&reason=limit"
		}
		assertRedirect(t, do(srv, r), want)
	}
}

func TestPostCommentMinScore(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name     string
		minScore *float64
		score    float64
		want     string
	}{
		{"default accepts mildly negative", nil, -0.4, "/comments.html"},
		{"default rejects below -0.5", nil, -0.6, "/comments.html?comment-posted=false&reason=score"},
		{"zero threshold accepts zero", &zero, 0, "/comments.html"},
		{"zero threshold rejects negative", &zero, -0.1, "/comments.html?comment-posted=false&reason=score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, Options{MinScore: tt.minScore, Scorer: fixedScorer{score: tt.score}})
			cookie := login(t, srv, "ann@example.com")

			w := do(srv, postForm("/data", url.Values{"message": {"hello"}}, cookie))
			assertRedirect(t, w, tt.want)
		})
	}
}

func TestDeleteComments(t *testing.T) {
	srv := testServer(t, Options{})
	if _, err := srv.store.Add(comment.Comment{Message: "bye", Timestamp: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	w := do(srv, httptest.NewRequest("GET", "/delete-comments", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}

	w = do(srv, httptest.NewRequest("POST", "/delete-comments", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	comments, err := srv.store.List(ListOptions{Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments after delete", len(comments))
	}
}

func TestUserStatus(t *testing.T) {
	srv := testServer(t, Options{})

	var status auth.Status
	w := do(srv, httptest.NewRequest("GET", "/user", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.IsLoggedIn || !strings.HasPrefix(status.URL, "/login?") {
		t.Errorf("logged out status = %+v", status)
	}

	cookie := login(t, srv, "ann@example.com")
	r := httptest.NewRequest("GET", "/user", nil)
	r.AddCookie(cookie)
	w = do(srv, r)
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.IsLoggedIn || !strings.HasPrefix(status.URL, "/logout?") {
		t.Errorf("logged in status = %+v", status)
	}
}

func TestLoginInvalidEmail(t *testing.T) {
	srv := testServer(t, Options{})

	w := do(srv, postForm("/login", url.Values{"email": {"not-an-email"}}, nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "valid email") {
		t.Error("expected error message")
	}
}

func TestLoginRejectsOffsiteRedirect(t *testing.T) {
	srv := testServer(t, Options{})

	w := do(srv, postForm("/login", url.Values{"email": {"ann@example.com"}, "next": {"//evil.example.com"}}, nil))
	assertRedirect(t, w, "/comments.html")
}

func TestLogout(t *testing.T) {
	srv := testServer(t, Options{})
	cookie := login(t, srv, "ann@example.com")

	r := httptest.NewRequest("GET", "/logout?next=/comments.html", nil)
	r.AddCookie(cookie)
	w := do(srv, r)
	assertRedirect(t, w, "/comments.html")

	r = httptest.NewRequest("GET", "/user", nil)
	r.AddCookie(cookie)
	w = do(srv, r)
	if !strings.Contains(w.Body.String(), `"isLoggedIn":false`) {
		t.Errorf("body = %q, want logged out", w.Body.String())
	}
}

func testServer(t *testing.T, opts Options) *Server {
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
	return NewServer(d, opts)
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func postForm(path string, form url.Values, cookie *http.Cookie) *http.Request {
	r := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	return r
}

func login(t *testing.T, srv *Server, email string) *http.Cookie {
	t.Helper()
	w := do(srv, postForm("/login", url.Values{"email": {email}}, nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "cpanel_session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("location = %q, want %q", got, want)
	}
}
