package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/meatshare/orderbook-backend/pkg/auth"
	"github.com/meatshare/orderbook-backend/pkg/auth/session"
	"github.com/meatshare/orderbook-backend/pkg/config"
)

type stubChecker struct {
	sessions map[string]string
	touched  []string
}

func (c *stubChecker) Touch(_ context.Context, sessionID string) (string, error) {
	c.touched = append(c.touched, sessionID)
	phone, ok := c.sessions[sessionID]
	if !ok {
		return "", session.ErrNoSession
	}
	return phone, nil
}

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		IdleTTL:    30 * time.Minute,
		CookieName: "orderbook_session",
		JWTSecret:  "test-secret",
		JWTIssuer:  "orderbook",
		TokenTTL:   12 * time.Hour,
	}
}

func TestAdminAllowsLiveSession(t *testing.T) {
	cfg := sessionTestConfig()
	checker := &stubChecker{sessions: map[string]string{"sess-1": "5550001111"}}

	token, err := pkgauth.MintAdminToken(cfg, time.Now(), "5550001111", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	var gotPhone string
	handler := Admin(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPhone = AdminPhone(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/export_confirmed_pdf", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if gotPhone != "5550001111" {
		t.Fatalf("admin phone = %q", gotPhone)
	}
	if len(checker.touched) != 1 || checker.touched[0] != "sess-1" {
		t.Fatalf("touched = %v", checker.touched)
	}
}

func TestAdminRejects(t *testing.T) {
	cfg := sessionTestConfig()
	checker := &stubChecker{sessions: map[string]string{}}

	expired, err := pkgauth.MintAdminToken(cfg, time.Now().Add(-24*time.Hour), "5550001111", "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	live, err := pkgauth.MintAdminToken(cfg, time.Now(), "5550001111", "sess-gone")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie"},
		{name: "garbage token", cookie: &http.Cookie{Name: cfg.CookieName, Value: "not-a-jwt"}},
		{name: "expired token", cookie: &http.Cookie{Name: cfg.CookieName, Value: expired}},
		{name: "revoked session", cookie: &http.Cookie{Name: cfg.CookieName, Value: live}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Admin(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodPost, "/clear_orders", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", rec.Code)
			}
			if called {
				t.Fatal("handler ran without a session")
			}
		})
	}
}
