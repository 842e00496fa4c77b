package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t)
	u := domain.User{ID: "u1", Email: "ada@example.com", FullName: "Ada"}

	token, err := m.Issue(u)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if *got != u {
		t.Errorf("Parse() = %+v, want %+v", got, u)
	}
}

func TestParseRejects(t *testing.T) {
	m := newTestManager(t)
	token, _ := m.Issue(domain.User{ID: "u1", Email: "ada@example.com"})

	other, _ := NewManager("another-secret", time.Hour, false)
	foreign, _ := other.Issue(domain.User{ID: "u1"})

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "tampered", token: token[:len(token)-2] + "xx"},
		{name: "other key", token: foreign},
		{name: "alg none", token: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Parse(tt.token); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Parse() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestParseExpired(t *testing.T) {
	m := newTestManager(t)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _ := m.Issue(domain.User{ID: "u1"})

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Parse() error = %v, want ErrInvalidSession", err)
	}
}

func TestTokenSessionRechecksExpiry(t *testing.T) {
	m := newTestManager(t)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	token, _ := m.Issue(domain.User{ID: "u1"})

	s := m.Session(token)
	u, err := s.CurrentUser(context.Background())
	if err != nil || u == nil || u.ID != "u1" {
		t.Fatalf("CurrentUser() = %v, %v", u, err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	u, err = s.CurrentUser(context.Background())
	if err != nil || u != nil {
		t.Errorf("CurrentUser() after expiry = %v, %v; want nil, nil", u, err)
	}
}

func TestFromRequestAndCookies(t *testing.T) {
	m := newTestManager(t)
	token, _ := m.Issue(domain.User{ID: "u1"})

	rec := httptest.NewRecorder()
	m.SetCookie(rec, token)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if u := m.FromRequest(req); u == nil || u.ID != "u1" {
		t.Errorf("FromRequest() = %v", u)
	}

	if u := m.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); u != nil {
		t.Errorf("FromRequest() without cookie = %v", u)
	}

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("ClearCookie() = %+v", c)
	}
}

func TestContextSession(t *testing.T) {
	ctx := WithUser(context.Background(), &domain.User{ID: "u1"})
	u, _ := ContextSession{}.CurrentUser(ctx)
	if u == nil || u.ID != "u1" {
		t.Errorf("CurrentUser() = %v", u)
	}
	if u, _ := (ContextSession{}).CurrentUser(context.Background()); u != nil {
		t.Errorf("CurrentUser() on empty context = %v", u)
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager("", time.Hour, false); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewManager("s", 0, false); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestUserIDStable(t *testing.T) {
	a := UserID("google", "123")
	if a != UserID("google", "123") {
		t.Error("UserID() not deterministic")
	}
	if a == UserID("github", "123") || a == UserID("google", "124") {
		t.Error("UserID() collides across provider or subject")
	}
}

func TestProviderFlow(t *testing.T) {
	var gotVerifier string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		gotVerifier = r.Form.Get("code_verifier")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "sub-42",
			"email": "ada@example.com",
			"name":  "Ada Lovelace",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewProvider(ProviderConfig{
		Name:         "test",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/callback",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
		Scopes:       []string{"openid", "email"},
	})

	state, verifier := NewState(), NewState()
	authURL, err := url.Parse(p.AuthCodeURL(state, verifier))
	if err != nil {
		t.Fatalf("AuthCodeURL() unparsable: %v", err)
	}
	q := authURL.Query()
	if q.Get("state") != state || q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Errorf("AuthCodeURL() query = %v", q)
	}
	if !strings.HasPrefix(authURL.String(), srv.URL+"/authorize") {
		t.Errorf("AuthCodeURL() = %s", authURL)
	}

	u, err := p.Exchange(context.Background(), "the-code", verifier)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if u.ID != UserID("test", "sub-42") || u.Email != "ada@example.com" || u.FullName != "Ada Lovelace" {
		t.Errorf("Exchange() = %+v", u)
	}
	if gotVerifier != verifier {
		t.Errorf("token endpoint got verifier %q, want %q", gotVerifier, verifier)
	}

	if _, err := p.Exchange(context.Background(), "wrong", verifier); err == nil {
		t.Error("Exchange() with bad code should fail")
	}
}
