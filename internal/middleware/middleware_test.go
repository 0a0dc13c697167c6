package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mountly/coverage-backend/internal/middleware"
	"github.com/mountly/coverage-backend/internal/utils"
)

// mockFetcher implements SessionFetcher and RoleFetcher without a database.
type mockFetcher struct {
	session utils.SessionData
	err     error
	role    string
	roleErr error
}

func (m mockFetcher) FindSessionByID(id string) (utils.SessionData, error) {
	return m.session, m.err
}

func (m mockFetcher) FindRoleByUserID(userID string) (string, error) {
	return m.role, m.roleErr
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// callWithCookie wraps a 200-OK handler in mw, optionally sets one cookie,
// and returns the recorded response.
func callWithCookie(t *testing.T, mw func(http.Handler) http.Handler, cookieName, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if cookieName != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockFetcher{}), "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    "some-user",
			ExpiresAt: time.Now().Add(-1 * time.Hour),
		},
	}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "session_id", "expired-session-id")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", body)
	}
}

func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "session_id", "nonexistent-session-id")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	const wantUserID = "test-user-123"

	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    wantUserID,
			ExpiresAt: time.Now().Add(1 * time.Hour),
		},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok || gotUserID != wantUserID {
			http.Error(w, "wrong userID in context: "+gotUserID, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	rec := httptest.NewRecorder()
	middleware.SessionMiddleware(fetcher)(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestAdminMiddleware_MissingUserID covers a request that never went through
// SessionMiddleware.
func TestAdminMiddleware_MissingUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/coverage/cache", nil)
	rec := httptest.NewRecorder()
	middleware.AdminMiddleware(mockFetcher{role: "admin"})(okHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "missing user ID") {
		t.Errorf("expected body to contain %q, got: %q", "missing user ID", body)
	}
}

func TestAdminMiddleware_Roles(t *testing.T) {
	tests := []struct {
		name    string
		fetcher mockFetcher
		want    int
	}{
		{"admin", mockFetcher{role: "admin"}, http.StatusOK},
		{"staff", mockFetcher{role: "staff"}, http.StatusForbidden},
		{"unknown user", mockFetcher{roleErr: errors.New("record not found")}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/coverage/cache", nil)
			req = req.WithContext(context.WithValue(req.Context(), utils.ContextUserIDKey, "user-1"))
			rec := httptest.NewRecorder()
			middleware.AdminMiddleware(tt.fetcher)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		role:    "admin",
	}

	rec := callWithCookie(t, middleware.RequireAdmin(fetcher, fetcher), "session_id", "abc")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}

	rec = callWithCookie(t, middleware.RequireAdmin(fetcher, fetcher), "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without cookie, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	mw := middleware.CORS("https://partners.example.com/")

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"http://localhost:5173", "http://localhost:5173"},
		{"https://partners.example.com", "https://partners.example.com"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/coverage/75201", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
			t.Errorf("origin %s: expected allow %q, got %q", tt.origin, tt.wantAllow, got)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/coverage/75201", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
}
