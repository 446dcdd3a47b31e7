package middleware // middleware provides reusable HTTP middleware functions

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/metrics"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

// AccessCookieName is the cookie carrying the access token. When both the
// cookie and an Authorization header are present, the cookie wins.
const AccessCookieName = "accessToken"

// PrincipalStore loads the user a verified token points at.
type PrincipalStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate returns the gate every protected route runs through. It
// extracts an access token from the accessToken cookie or the
// Authorization header, verifies it, loads the user and binds the
// sanitized record to the request context under "user" (and its id under
// "user_id"). That binding is the only way handlers learn who is calling.
//
// Status mapping: no token at all is 401; a token that fails verification
// (expired, bad signature, malformed) is 403; a token whose user no longer
// exists is 404. The 401/403 split is deliberate and matched by the
// clients, so keep it.
func Authenticate(secret string, users PrincipalStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				metrics.AuthFailures.WithLabelValues("missing").Inc()
				return utils.Unauthorized("access token is required")
			}

			userID, _, err := utils.VerifyToken(secret, raw)
			if err != nil {
				switch {
				case errors.Is(err, utils.ErrTokenExpired):
					metrics.AuthFailures.WithLabelValues("expired").Inc()
				default:
					metrics.AuthFailures.WithLabelValues("invalid").Inc()
				}
				return utils.Forbidden("invalid or expired access token")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
					return utils.NotFound("user not found")
				}
				if errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return utils.Internal("could not load user")
			}

			// Only the sanitized projection reaches handlers; the password
			// hash and refresh digest stay below this line.
			c.Set("user", u.Public())
			c.Set("user_id", u.ID)
			return next(c)
		}
	}
}

// tokenFromRequest pulls the candidate access token out of the request.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// CurrentUser returns the principal bound by Authenticate.
func CurrentUser(c echo.Context) (model.PublicUser, bool) {
	u, ok := c.Get("user").(model.PublicUser)
	return u, ok
}

// CurrentUserID returns the acting user's id, or 0 when the request is
// unauthenticated (which cannot happen behind Authenticate).
func CurrentUserID(c echo.Context) uint64 {
	id, _ := c.Get("user_id").(uint64)
	return id
}
