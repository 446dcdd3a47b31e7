// Package service holds the business core: the session authority that owns
// the credential lifecycle, the ownership guard applied by every mutating
// handler, and the toggle engine behind likes and subscriptions.
package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"

	"github.com/kavyand/vidstream/internal/metrics"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

// UserStore is the slice of the user repository the session authority
// needs. The refresh token hash on the user row is mutated through this
// interface only.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SaveRefreshHash(ctx context.Context, id uint64, hash string) error
	ClearRefreshHash(ctx context.Context, id uint64) error
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	Access  utils.Token
	Refresh utils.Token
}

// Session issues, rotates and revokes token pairs. A user has at most one
// live refresh token: issuing a pair overwrites the stored digest, which
// invalidates whatever session held the previous one.
type Session struct {
	Users          UserStore
	AccessSecret   string
	RefreshSecret  string
	AccessTTLMin   int
	RefreshTTLDays int
}

func NewSession(users UserStore, accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *Session {
	return &Session{
		Users:          users,
		AccessSecret:   accessSecret,
		RefreshSecret:  refreshSecret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
	}
}

// IssuePair mints an access/refresh pair for a user and persists the new
// refresh digest. The pair must not be treated as valid unless the write
// succeeded, so any store failure surfaces as a 500 and nothing is
// returned.
func (s *Session) IssuePair(ctx context.Context, userID uint64) (TokenPair, error) {
	access, err := utils.IssueAccess(s.AccessSecret, userID, s.AccessTTLMin)
	if err != nil {
		return TokenPair{}, utils.Internal("could not issue access token")
	}
	refresh, err := utils.IssueRefresh(s.RefreshSecret, userID, s.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, utils.Internal("could not issue refresh token")
	}
	if err := s.Users.SaveRefreshHash(ctx, userID, utils.HashRefreshToken(refresh.Value)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return TokenPair{}, err
		}
		return TokenPair{}, utils.Internal("could not persist refresh token")
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a presented refresh token and rotates it. Every
// successful refresh re-issues both tokens, so a stolen refresh token
// becomes useless after the legitimate client's next exchange. All
// verification failures collapse to a 401 so the caller learns nothing
// about which check failed.
func (s *Session) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	userID, _, err := utils.VerifyToken(s.RefreshSecret, presented)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		return TokenPair{}, utils.Unauthorized("invalid refresh token")
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return TokenPair{}, err
		}
		if errors.Is(err, sql.ErrNoRows) {
			metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
			return TokenPair{}, utils.Unauthorized("invalid refresh token")
		}
		return TokenPair{}, utils.Internal("could not load user")
	}
	// A token that no longer matches the stored digest was either rotated
	// by a newer session or cleared by logout.
	if u.RefreshTokenHash == nil ||
		subtle.ConstantTimeCompare([]byte(*u.RefreshTokenHash), []byte(utils.HashRefreshToken(presented))) != 1 {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		return TokenPair{}, utils.Unauthorized("invalid refresh token")
	}
	pair, err := s.IssuePair(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	metrics.TokenRefreshes.WithLabelValues("rotated").Inc()
	return pair, nil
}

// Revoke clears the stored refresh digest unconditionally. Used on logout;
// idempotent.
func (s *Session) Revoke(ctx context.Context, userID uint64) error {
	if err := s.Users.ClearRefreshHash(ctx, userID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return utils.Internal("could not revoke session")
	}
	return nil
}
