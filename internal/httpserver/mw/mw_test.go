package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{PerSecond: 0.001, Burst: 2})(ok)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	for i := 0; i < 2; i++ {
		if rec := serve(h, req); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := serve(h, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
	}

	// Other clients keep their own budget.
	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	if rec := serve(h, other); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestLimiterSweepsIdleVisitors(t *testing.T) {
	l := newLimiter(RateLimitConfig{PerSecond: 1, Burst: 1, SweepInterval: time.Minute, IdleTTL: time.Minute})
	start := time.Now()

	l.allow("a", start)
	l.allow("b", start)
	l.allow("c", start.Add(2*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.visitors) != 1 {
		t.Errorf("visitors = %d, want 1", len(l.visitors))
	}
	if _, ok := l.visitors["c"]; !ok {
		t.Error("active visitor swept")
	}
}

func TestRequireUser(t *testing.T) {
	sessions, err := auth.NewManager("secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	token, _ := sessions.Issue(domain.User{ID: "u1", Email: "a@example.com"})

	var seen *domain.User
	h := RequireUser(sessions, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFrom(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie status = %d, want 401", rec.Code)
	}
	if seen != nil {
		t.Error("handler ran without a session")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rec = serve(h, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with cookie status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != "u1" {
		t.Errorf("context user = %+v", seen)
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"marks.example.com", "*.internal.example.com"}, logger.NewNop())(ok)

	tests := []struct {
		host string
		want int
	}{
		{"marks.example.com", http.StatusOK},
		{"a.internal.example.com", http.StatusOK},
		{"evil.example.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			if rec := serve(h, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{name: "empty list passes", remote: "203.0.113.9:1", want: http.StatusOK},
		{name: "inside range", allowed: []string{"10.0.0.0/8"}, remote: "10.1.2.3:1", want: http.StatusOK},
		{name: "outside range", allowed: []string{"10.0.0.0/8"}, remote: "203.0.113.9:1", want: http.StatusForbidden},
		{name: "xff ignored without proxy", allowed: []string{"10.0.0.0/8"}, remote: "203.0.113.9:1", xff: "10.1.2.3", want: http.StatusForbidden},
		{name: "xff trusted behind proxy", allowed: []string{"10.0.0.0/8"}, trustProxy: true, remote: "127.0.0.1:1", xff: "10.1.2.3", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.NewNop())(ok)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if rec := serve(h, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://marks.example.com"})(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://marks.example.com")
	rec := serve(h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://marks.example.com" {
		t.Errorf("allowed origin header = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin header = %q, want empty", got)
	}

	h = CORS(nil)(ok)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("empty list origin header = %q, want empty", got)
	}
}

func TestLogCapturesStatus(t *testing.T) {
	h := Log(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
