package repository

import (
	"context"
	"database/sql"

	"github.com/kavyand/vidstream/internal/model"
)

// TweetRepo provides persistence for tweets.
type TweetRepo struct{ DB *sql.DB }

func NewTweetRepo(db *sql.DB) *TweetRepo { return &TweetRepo{DB: db} }

const tweetColumns = "id,owner_id,content,created_at,updated_at"

// Create inserts a tweet and reads back the stored row.
func (r *TweetRepo) Create(ctx context.Context, t *model.Tweet) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tweets (owner_id, content) VALUES (?,?)", t.OwnerID, t.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT "+tweetColumns+" FROM tweets WHERE id=?", id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID fetches a single tweet.
func (r *TweetRepo) GetByID(ctx context.Context, id uint64) (model.Tweet, error) {
	var t model.Tweet
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tweetColumns+" FROM tweets WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Exists reports whether a tweet row exists.
func (r *TweetRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM tweets WHERE id=? LIMIT 1", id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListByOwner returns a user's tweets, newest first.
func (r *TweetRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tweet, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tweetColumns+" FROM tweets WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tweet
	for rows.Next() {
		var t model.Tweet
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateContent replaces the tweet body.
func (r *TweetRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE tweets SET content=? WHERE id=?", content, id)
	return err
}

// Delete removes a tweet row.
func (r *TweetRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tweets WHERE id=?", id)
	return err
}
