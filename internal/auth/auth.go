// Package auth guards the admin surface. Credentials are checked by an
// injected Verifier and a successful login yields an expiring session token.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("session missing or expired")
)

// Verifier checks a username/password pair.
type Verifier interface {
	Verify(username, password string) bool
}

// DenyAll rejects every login. It stands in when no admin account is
// configured.
type DenyAll struct{}

func (DenyAll) Verify(string, string) bool { return false }

// Bcrypt verifies a single admin account whose password is stored as a
// bcrypt hash.
type Bcrypt struct {
	Username string
	Hash     []byte
}

// NewBcrypt builds a verifier from a username and an encoded bcrypt hash.
func NewBcrypt(username, hash string) (*Bcrypt, error) {
	if username == "" || hash == "" {
		return nil, errors.New("admin username and password hash are required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &Bcrypt{Username: username, Hash: []byte(hash)}, nil
}

func (b *Bcrypt) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(b.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(b.Hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Session is an authenticated admin login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sessions issues and checks session tokens.
type Sessions struct {
	verifier Verifier
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// NewSessions returns a session manager. A zero ttl defaults to one hour.
func NewSessions(v Verifier, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sessions{verifier: v, ttl: ttl, now: time.Now, sessions: make(map[string]Session)}
}

// Login verifies the credentials and opens a session.
func (s *Sessions) Login(username, password string) (Session, error) {
	if s.verifier == nil || !s.verifier.Verify(username, password) {
		return Session{}, ErrInvalidCredentials
	}
	sess := Session{Token: uuid.NewString(), Username: username, ExpiresAt: s.now().Add(s.ttl)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[sess.Token] = sess
	return sess, nil
}

// Check returns the session for token if it is still valid.
func (s *Sessions) Check(token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNoSession
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Logout ends a session.
func (s *Sessions) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// prune drops expired sessions. Callers hold mu.
func (s *Sessions) prune() {
	now := s.now()
	for k, v := range s.sessions {
		if !now.Before(v.ExpiresAt) {
			delete(s.sessions, k)
		}
	}
}
