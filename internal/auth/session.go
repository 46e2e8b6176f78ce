// Package auth provides the visitor session state and cookie sessions for the
// development backend.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	sessionExpiry = 7 * 24 * time.Hour
	cookieName    = "cpanel_session"
)

// ErrNoSession is returned by Validate when the request carries no live session.
var ErrNoSession = errors.New("no valid session")

// SessionStore manages sessions in SQLite.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session store.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create generates a new session for the given email and sets the cookie.
func (s *SessionStore) Create(ctx context.Context, w http.ResponseWriter, email string) error {
	id, err := generateSessionID()
	if err != nil {
		return fmt.Errorf("generating session ID: %w", err)
	}

	expiresAt := time.Now().Add(sessionExpiry)

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, email, expires_at) VALUES (?, ?, ?)",
		id, email, expiresAt,
	); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Validate returns the email of the request's session. It returns an error
// wrapping ErrNoSession when the cookie is missing, unknown or expired.
func (s *SessionStore) Validate(r *http.Request) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", ErrNoSession
	}

	var email string
	var expiresAt time.Time

	err = s.db.QueryRowContext(r.Context(),
		"SELECT email, expires_at FROM sessions WHERE id = ?",
		cookie.Value,
	).Scan(&email, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: unknown session", ErrNoSession)
	}
	if err != nil {
		return "", fmt.Errorf("querying session: %w", err)
	}

	if time.Now().After(expiresAt) {
		if _, delErr := s.db.ExecContext(r.Context(), "DELETE FROM sessions WHERE id = ?", cookie.Value); delErr != nil {
			return "", fmt.Errorf("deleting expired session: %w", delErr)
		}
		return "", fmt.Errorf("%w: session expired", ErrNoSession)
	}

	return email, nil
}

// Destroy removes the session and clears the cookie.
func (s *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil // no session to destroy
	}

	if _, err := s.db.ExecContext(r.Context(), "DELETE FROM sessions WHERE id = ?", cookie.Value); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Cleanup removes expired sessions.
func (s *SessionStore) Cleanup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?",
		time.Now(),
	); err != nil {
		return fmt.Errorf("cleaning up sessions: %w", err)
	}
	return nil
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
