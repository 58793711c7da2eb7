// Package session holds the authenticated user and their access token.
//
// A Session is shared between the HTTP API layer (bearer auth, token
// renewal) and the connection manager (dial credentials, forced logout).
// All methods are safe for concurrent use.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parley-chat/parley/pkg/wire"
)

// Session is the client's authentication state. The zero value is a logged
// out session.
type Session struct {
	mu     sync.Mutex
	user   wire.UserInfo
	token  string
	active bool

	logger   *slog.Logger
	onLogout func()
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLogoutHook sets the callback fired by ForceLogout after the session
// is cleared.
func WithLogoutHook(hook func()) Option {
	return func(s *Session) {
		s.onLogout = hook
	}
}

// New returns a logged out session.
func New(opts ...Option) *Session {
	s := &Session{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set installs a user and access token after login.
func (s *Session) Set(user wire.UserInfo, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.active = true
	s.mu.Unlock()
	s.logger.Info("session started", "user_id", user.ID, "username", user.Username)
}

// Renew replaces the access token, keeping the user.
func (s *Session) Renew(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.logger.Debug("access token renewed")
}

// Clear drops the user and token.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = wire.UserInfo{}
	s.token = ""
	s.active = false
	s.mu.Unlock()
}

// ForceLogout clears the session and fires the logout hook. Used by the
// connection manager when the server ends the session or reconnection gives
// up.
func (s *Session) ForceLogout() {
	s.logger.Warn("forced logout")
	s.Clear()
	if s.onLogout != nil {
		s.onLogout()
	}
}

// Active reports whether a user is logged in.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// User returns the logged in user, zero when logged out.
func (s *Session) User() wire.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the current access token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// TokenExpiry parses the expiry claim out of the current access token. The
// signature is not verified: the server owns validity, the client only
// schedules renewal. Returns false when no token is held or it carries no
// expiry.
func (s *Session) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.logger.Debug("token parse failed", "error", err)
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
