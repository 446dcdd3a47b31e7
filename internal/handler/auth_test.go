package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/config"
	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/utils"
)

// memUserStore is an in-memory UserStore for handler tests.
type memUserStore struct {
	nextID uint64
	users  map[uint64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uint64]model.User{}}
}

func (s *memUserStore) add(t *testing.T, username, email, password string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	s.nextID++
	u := model.User{ID: s.nextID, Username: username, Email: email, FullName: username, PasswordHash: hash}
	s.users[u.ID] = u
	return u
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *memUserStore) Create(_ context.Context, username, email, fullName, password, avatarURL string, coverURL *string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	s.users[s.nextID] = model.User{
		ID: s.nextID, Username: username, Email: email, FullName: fullName,
		PasswordHash: hash, AvatarURL: avatarURL, CoverImageURL: coverURL,
	}
	return s.nextID, nil
}

func (s *memUserStore) SaveRefreshHash(_ context.Context, id uint64, hash string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.RefreshTokenHash = &hash
	s.users[id] = u
	return nil
}

func (s *memUserStore) ClearRefreshHash(_ context.Context, id uint64) error {
	if u, ok := s.users[id]; ok {
		u.RefreshTokenHash = nil
		s.users[id] = u
	}
	return nil
}

func (s *memUserStore) UpdatePasswordHash(_ context.Context, id uint64, password string, cost int) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateDetails(_ context.Context, id uint64, fullName, email string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.FullName, u.Email = fullName, email
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateAvatar(_ context.Context, id uint64, url string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.AvatarURL = url
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateCoverImage(_ context.Context, id uint64, url string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.CoverImageURL = &url
	s.users[id] = u
	return nil
}

func newAuthFixture(t *testing.T) (*memUserStore, *AuthHandler, *echo.Echo) {
	t.Helper()
	store := newMemUserStore()
	cfg := config.Config{AccessSecret: "a-secret", RefreshSecret: "r-secret", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}
	sessions := service.NewSession(store, cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	h := NewAuthHandler(cfg, store, sessions, nil)

	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler
	return store, h, e
}

func doJSON(e *echo.Echo, method, path, body string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestLoginSuccessSetsCookiesAndReturnsTokens(t *testing.T) {
	store, h, e := newAuthFixture(t)
	store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/login", h.Login)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"maya@example.com","password":"pass1234"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatal("expected a success envelope")
	}

	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
		if !ck.HttpOnly {
			t.Fatalf("cookie %s is not httpOnly", ck.Name)
		}
	}
	for _, want := range []string{"accessToken", "refreshToken"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("cookie %s not set (got %v)", want, names)
		}
	}
}

func TestLoginUnknownEmailIs404(t *testing.T) {
	_, h, e := newAuthFixture(t)
	e.POST("/login", h.Login)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"x"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	store, h, e := newAuthFixture(t)
	store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/login", h.Login)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"maya@example.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestRefreshRotatesAndOldCookieDies(t *testing.T) {
	store, h, e := newAuthFixture(t)
	u := store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/refresh", h.Refresh)

	pair, err := h.Sessions.IssuePair(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	withCookie := func(v string) func(*http.Request) {
		return func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "refreshToken", Value: v})
		}
	}

	rec := doJSON(e, http.MethodPost, "/refresh", "", withCookie(pair.Refresh.Value))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// The consumed token is dead.
	rec = doJSON(e, http.MethodPost, "/refresh", "", withCookie(pair.Refresh.Value))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replay got status %d, want 401", rec.Code)
	}
}

func TestRefreshAcceptsBodyToken(t *testing.T) {
	store, h, e := newAuthFixture(t)
	u := store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/refresh", h.Refresh)

	pair, err := h.Sessions.IssuePair(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	rec := doJSON(e, http.MethodPost, "/refresh", `{"refresh_token":"`+pair.Refresh.Value+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRefreshWithoutTokenIs401(t *testing.T) {
	_, h, e := newAuthFixture(t)
	e.POST("/refresh", h.Refresh)

	rec := doJSON(e, http.MethodPost, "/refresh", `{}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	store, h, e := newAuthFixture(t)
	u := store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/logout", h.Logout, middleware.Authenticate(h.Cfg.AccessSecret, store))
	e.POST("/refresh", h.Refresh)

	pair, err := h.Sessions.IssuePair(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	rec := doJSON(e, http.MethodPost, "/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: pair.Refresh.Value})
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout got status %d, want 401", rec.Code)
	}
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	store, h, e := newAuthFixture(t)
	u := store.add(t, "maya", "maya@example.com", "pass1234")
	e.POST("/change-password", h.ChangePassword, middleware.Authenticate(h.Cfg.AccessSecret, store))
	e.POST("/login", h.Login)

	pair, err := h.Sessions.IssuePair(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	auth := func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	}

	rec := doJSON(e, http.MethodPost, "/change-password", `{"old_password":"wrong","new_password":"next5678"}`, auth)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong old password got status %d, want 401", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/change-password", `{"old_password":"pass1234","new_password":"next5678"}`, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("change got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/login", `{"email":"maya@example.com","password":"next5678"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password got status %d, want 200", rec.Code)
	}
}
