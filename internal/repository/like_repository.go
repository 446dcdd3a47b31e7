package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kavyand/vidstream/internal/model"
)

// LikeRepo persists like rows for videos, comments and tweets. The three
// keyspaces share one table and are separated by the target_kind column.
// The unique key on (liked_by, target_id, target_kind) is what makes the
// check-then-act toggle safe under concurrency.
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

const likeColumns = "id,liked_by,target_id,target_kind,created_at"

// Find returns the like row for a compound key, or nil when absent.
func (r *LikeRepo) Find(ctx context.Context, actorID, targetID uint64, kind string) (*model.Like, error) {
	var l model.Like
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+likeColumns+" FROM likes WHERE liked_by=? AND target_id=? AND target_kind=? LIMIT 1",
		actorID, targetID, kind).
		Scan(&l.ID, &l.LikedBy, &l.TargetID, &l.TargetKind, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a like row. ErrDuplicate signals that a concurrent toggle
// already created the row.
func (r *LikeRepo) Create(ctx context.Context, actorID, targetID uint64, kind string) (*model.Like, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO likes (liked_by, target_id, target_kind) VALUES (?,?,?)",
		actorID, targetID, kind)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var l model.Like
	err = r.DB.QueryRowContext(ctx,
		"SELECT "+likeColumns+" FROM likes WHERE id=?", id).
		Scan(&l.ID, &l.LikedBy, &l.TargetID, &l.TargetKind, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Delete removes a like row by primary key.
func (r *LikeRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM likes WHERE id=?", id)
	return err
}

// ListLikedVideos returns the published videos a user has liked, most
// recently liked first.
func (r *LikeRepo) ListLikedVideos(ctx context.Context, userID uint64) ([]model.Video, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id,v.owner_id,v.title,v.description,v.video_url,v.thumbnail_url,
		        v.duration_secs,v.views,v.is_published,v.created_at,v.updated_at
		 FROM likes l JOIN videos v ON v.id = l.target_id
		 WHERE l.liked_by=? AND l.target_kind='video'
		 ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Video
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
			&v.ThumbnailURL, &v.DurationSecs, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountVideoLikesForOwner counts likes across all of a channel's videos.
func (r *LikeRepo) CountVideoLikesForOwner(ctx context.Context, ownerID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.target_id
		 WHERE l.target_kind='video' AND v.owner_id=?`, ownerID).Scan(&n)
	return n, err
}
