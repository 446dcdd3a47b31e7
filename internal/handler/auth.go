package handler

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/config"
	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/storage"
	"github.com/kavyand/vidstream/internal/utils"
)

// Cookie names for the two token kinds. Both are httpOnly+secure; the
// middleware prefers the cookie over the Authorization header.
const (
	accessCookie  = middleware.AccessCookieName
	refreshCookie = "refreshToken"
)

// UserStore is what the account and session endpoints need from the user
// repository. repository.UserRepo satisfies it; tests use an in-memory
// fake.
type UserStore interface {
	service.UserStore
	Create(ctx context.Context, username, email, fullName, password, avatarURL string, coverURL *string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePasswordHash(ctx context.Context, id uint64, password string, cost int) error
	UpdateDetails(ctx context.Context, id uint64, fullName, email string) error
	UpdateAvatar(ctx context.Context, id uint64, url string) error
	UpdateCoverImage(ctx context.Context, id uint64, url string) error
}

// AuthHandler bundles dependencies for the account and session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions *service.Session
	Uploader storage.Uploader
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions *service.Session, up storage.Uploader) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Uploader: up}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
type updateDetailsReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.PublicUser `json:"user"`
	Access  tokenPart        `json:"access"`
	Refresh tokenPart        `json:"refresh"`
}

// Register creates an account from a multipart form: fullName, email,
// username, password plus an avatar file (required) and a coverImage file
// (optional). Media goes through the upload collaborator; the local temp
// copies are removed whether or not the upload succeeds.
func (h *AuthHandler) Register(c echo.Context) error {
	fullName := strings.TrimSpace(c.FormValue("fullName"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	username := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	password := c.FormValue("password")
	if fullName == "" || email == "" || username == "" || password == "" {
		return utils.BadRequest("fullName, email, username and password are required")
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return utils.BadRequest("avatar is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	avatarURL, err := h.uploadForm(ctx, avatarFile)
	if err != nil {
		return utils.Internal("avatar upload failed")
	}
	var coverURL *string
	if coverFile, ferr := c.FormFile("coverImage"); ferr == nil {
		u, err := h.uploadForm(ctx, coverFile)
		if err != nil {
			return utils.Internal("cover image upload failed")
		}
		coverURL = &u
	}

	uid, err := h.Users.Create(ctx, username, email, fullName, password, avatarURL, coverURL, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return utils.Conflict("user already exists with this email or username")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return utils.Internal("could not create user")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return utils.Internal("could not load created user")
	}
	return utils.Respond(c, http.StatusCreated, "user created successfully", u.Public())
}

// Login verifies credentials and starts a session: both tokens go back in
// the body and as httpOnly cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return utils.BadRequest("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return utils.BadRequest("email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("user not found")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return utils.Internal("could not load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return utils.Unauthorized("invalid email or password")
	}

	pair, err := h.Sessions.IssuePair(ctx, u.ID)
	if err != nil {
		return err
	}
	setAuthCookies(c, pair)
	return utils.Respond(c, http.StatusOK, "user logged in successfully", authResp{
		User:    u.Public(),
		Access:  tokenPart{Token: pair.Access.Value, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Value, Expires: pair.Refresh.Exp},
	})
}

// Logout revokes the caller's refresh token and clears both cookies.
// Requires a valid session; idempotent on the server side.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	clearAuthCookies(c)
	return utils.Respond(c, http.StatusOK, "user logged out successfully", nil)
}

// Refresh exchanges a refresh token (cookie preferred, body fallback) for
// a rotated pair. The presented token is dead afterwards: replaying it
// yields a 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	presented := ""
	if cookie, err := c.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		presented = cookie.Value
	} else {
		var req refreshReq
		_ = c.Bind(&req)
		presented = strings.TrimSpace(req.RefreshToken)
	}
	if presented == "" {
		return utils.Unauthorized("refresh token is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		return err
	}
	setAuthCookies(c, pair)
	return utils.Respond(c, http.StatusOK, "tokens refreshed successfully", echo.Map{
		"access":  tokenPart{Token: pair.Access.Value, Expires: pair.Access.Exp},
		"refresh": tokenPart{Token: pair.Refresh.Value, Expires: pair.Refresh.Exp},
	})
}

// ChangePassword re-hashes the password after verifying the current one.
// Requires a valid session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		return utils.BadRequest("old_password and new_password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := middleware.CurrentUserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return utils.Internal("could not load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return utils.Unauthorized("old password is incorrect")
	}
	if err := h.Users.UpdatePasswordHash(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return utils.Internal("could not change password")
	}
	return utils.Respond(c, http.StatusOK, "password changed successfully", nil)
}

// CurrentUser returns the principal bound by the authenticator.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	return utils.Respond(c, http.StatusOK, "current user fetched successfully", u)
}

// UpdateDetails changes full name and email for the current user.
func (h *AuthHandler) UpdateDetails(c echo.Context) error {
	var req updateDetailsReq
	if err := c.Bind(&req); err != nil {
		return utils.BadRequest("invalid body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" {
		return utils.BadRequest("full_name and email are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := middleware.CurrentUserID(c)
	if err := h.Users.UpdateDetails(ctx, uid, req.FullName, req.Email); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return utils.Conflict("email already in use")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return utils.Internal("could not update account")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return utils.Internal("could not load user")
	}
	return utils.Respond(c, http.StatusOK, "account details updated successfully", u.Public())
}

// UpdateAvatar replaces the avatar through the upload collaborator.
func (h *AuthHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", h.Users.UpdateAvatar, "avatar updated successfully")
}

// UpdateCoverImage replaces the cover image through the upload collaborator.
func (h *AuthHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", h.Users.UpdateCoverImage, "cover image updated successfully")
}

func (h *AuthHandler) updateImage(c echo.Context, field string, save func(context.Context, uint64, string) error, okMsg string) error {
	fh, err := c.FormFile(field)
	if err != nil {
		return utils.BadRequest(field + " is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	url, err := h.uploadForm(ctx, fh)
	if err != nil {
		return utils.Internal(field + " upload failed")
	}
	uid := middleware.CurrentUserID(c)
	if err := save(ctx, uid, url); err != nil {
		return utils.Internal("could not update " + field)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return utils.Internal("could not load user")
	}
	return utils.Respond(c, http.StatusOK, okMsg, u.Public())
}

// uploadForm stores one multipart file through the collaborator. The temp
// copy is removed on success and failure alike.
func (h *AuthHandler) uploadForm(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	path, err := saveTempFile(fh)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	return h.Uploader.Upload(ctx, path)
}

// ----- cookies -----

func setAuthCookies(c echo.Context, pair service.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name: accessCookie, Value: pair.Access.Value, Expires: pair.Access.Exp,
		Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name: refreshCookie, Value: pair.Refresh.Value, Expires: pair.Refresh.Exp,
		Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{accessCookie, refreshCookie} {
		c.SetCookie(&http.Cookie{
			Name: name, Value: "", MaxAge: -1,
			Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteStrictMode,
		})
	}
}
