package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

const testSecret = "test-access-secret"

type fakePrincipalStore struct {
	users map[uint64]model.User
}

func (s fakePrincipalStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// run sends a request through Authenticate into a handler that records the
// bound principal.
func run(t *testing.T, store PrincipalStore, decorate func(*http.Request)) (*httptest.ResponseRecorder, *model.PublicUser) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler

	var seen *model.PublicUser
	h := Authenticate(testSecret, store)(func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			seen = &u
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/protected", h)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func mint(t *testing.T, secret string, userID uint64, ttlMin int) string {
	t.Helper()
	tok, err := utils.IssueAccess(secret, userID, ttlMin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return tok.Value
}

func TestAuthenticateMissingTokenIs401(t *testing.T) {
	rec, _ := run(t, fakePrincipalStore{}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestAuthenticateInvalidTokenIs403(t *testing.T) {
	store := fakePrincipalStore{users: map[uint64]model.User{1: {ID: 1}}}

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": mint(t, "some-other-secret", 1, 15),
	}
	for name, raw := range cases {
		rec, _ := run(t, store, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+raw)
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: got status %d, want 403", name, rec.Code)
		}
	}
}

func TestAuthenticateExpiredTokenIs403(t *testing.T) {
	store := fakePrincipalStore{users: map[uint64]model.User{1: {ID: 1}}}
	rec, _ := run(t, store, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+mint(t, testSecret, 1, -1))
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rec.Code)
	}
}

func TestAuthenticateUnknownUserIs404(t *testing.T) {
	rec, _ := run(t, fakePrincipalStore{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+mint(t, testSecret, 42, 15))
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestAuthenticateBindsSanitizedUser(t *testing.T) {
	hash := "digest"
	store := fakePrincipalStore{users: map[uint64]model.User{
		7: {ID: 7, Username: "maya", Email: "maya@example.com", PasswordHash: "bcrypt", RefreshTokenHash: &hash},
	}}
	rec, seen := run(t, store, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+mint(t, testSecret, 7, 15))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if seen == nil {
		t.Fatal("handler saw no principal")
	}
	if seen.ID != 7 || seen.Username != "maya" {
		t.Fatalf("bound principal = %+v", seen)
	}
}

func TestAuthenticateCookieWinsOverHeader(t *testing.T) {
	store := fakePrincipalStore{users: map[uint64]model.User{
		1: {ID: 1, Username: "cookie-user"},
		2: {ID: 2, Username: "header-user"},
	}}
	rec, seen := run(t, store, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: mint(t, testSecret, 1, 15)})
		r.Header.Set("Authorization", "Bearer "+mint(t, testSecret, 2, 15))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != 1 {
		t.Fatalf("bound principal = %+v, want the cookie's user", seen)
	}
}
