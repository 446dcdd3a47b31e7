package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

// UserRepo persists user records. The refresh_token_hash column is the only
// mutable shared state the auth core owns; it is written exclusively through
// SaveRefreshHash and ClearRefreshHash.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,full_name,password_hash,avatar_url,cover_image_url,refresh_token_hash,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		cover   sql.NullString
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &cover, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if cover.Valid {
		u.CoverImageURL = &cover.String
	}
	if refresh.Valid {
		u.RefreshTokenHash = &refresh.String
	}
	return u, nil
}

// Create inserts a user and returns its ID. The password is hashed here so
// plaintext never reaches a SQL statement.
func (r *UserRepo) Create(ctx context.Context, username, email, fullName, password, avatarURL string, coverURL *string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var cover sql.NullString
	if coverURL != nil {
		cover = sql.NullString{String: *coverURL, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES (?,?,?,?,?,?)",
		username, email, fullName, hash, avatarURL, cover)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Exists reports whether a user row exists.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// SaveRefreshHash overwrites the stored refresh token digest, unilaterally
// invalidating whatever session held the previous one.
func (r *UserRepo) SaveRefreshHash(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 affected rows when the value is unchanged too, so
		// confirm the row is really absent before failing.
		ok, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return sql.ErrNoRows
		}
	}
	return nil
}

// ClearRefreshHash removes the stored refresh token digest. Idempotent.
func (r *UserRepo) ClearRefreshHash(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=NULL WHERE id=?", id)
	return err
}

// UpdatePasswordHash re-hashes and stores a new password.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateDetails changes the mutable profile fields.
func (r *UserRepo) UpdateDetails(ctx context.Context, id uint64, fullName, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, email=? WHERE id=?", fullName, email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrUserExists
	}
	return err
}

// UpdateAvatar stores a new avatar URL.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET avatar_url=? WHERE id=?", url, id)
	return err
}

// UpdateCoverImage stores a new cover image URL.
func (r *UserRepo) UpdateCoverImage(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET cover_image_url=? WHERE id=?", url, id)
	return err
}
