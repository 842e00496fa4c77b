// Package auth issues and verifies session tokens and runs the OAuth sign-in
// flow that creates them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// CookieName holds the session token.
const CookieName = "smartmark_session"

const issuer = "smartmark"

// ErrInvalidSession covers missing, malformed, tampered and expired tokens.
var ErrInvalidSession = errors.New("auth: invalid session")

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs session tokens with HS256 and reads them back from
// requests.
type Manager struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a manager. secret must be non-empty.
func NewManager(secret string, ttl time.Duration, secureCookie bool) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be > 0, got %v", ttl)
	}
	return &Manager{
		key:    []byte(secret),
		ttl:    ttl,
		secure: secureCookie,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for u.
func (m *Manager) Issue(u domain.User) (string, error) {
	now := m.now()
	claims := &sessionClaims{
		Email: u.Email,
		Name:  u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its user. Any failure is
// ErrInvalidSession wrapping the cause.
func (m *Manager) Parse(token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidSession)
	}

	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.Name,
	}, nil
}

// TokenFromRequest returns the raw session cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// FromRequest returns the signed-in user, or nil when the request carries no
// valid session.
func (m *Manager) FromRequest(r *http.Request) *domain.User {
	u, err := m.Parse(TokenFromRequest(r))
	if err != nil {
		return nil
	}
	return u
}

// SetCookie stores token on the client.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie signs the client out.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetFlowCookie stores a short-lived value for the sign-in round trip.
func (m *Manager) SetFlowCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearFlowCookie removes a cookie set by SetFlowCookie.
func (m *Manager) ClearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenSession resolves the user behind one token, checking it again on every
// call so that expiry takes effect on long-lived connections.
type TokenSession struct {
	manager *Manager
	token   string
}

// Session binds a token for later lookups.
func (m *Manager) Session(token string) *TokenSession {
	return &TokenSession{manager: m, token: token}
}

// CurrentUser returns nil without error when the token is no longer valid.
func (s *TokenSession) CurrentUser(context.Context) (*domain.User, error) {
	u, err := s.manager.Parse(s.token)
	if err != nil {
		return nil, nil
	}
	return u, nil
}

type ctxKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the user stored by WithUser, or nil.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKey{}).(*domain.User)
	return u
}

// ContextSession looks the user up in the request context.
type ContextSession struct{}

func (ContextSession) CurrentUser(ctx context.Context) (*domain.User, error) {
	return UserFrom(ctx), nil
}
