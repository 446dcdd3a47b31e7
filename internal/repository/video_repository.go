package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kavyand/vidstream/internal/model"
)

// VideoRepo provides persistence for videos.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

const videoColumns = "id,owner_id,title,description,video_url,thumbnail_url,duration_secs,views,is_published,created_at,updated_at"

func scanVideo(s interface{ Scan(...interface{}) error }) (model.Video, error) {
	var v model.Video
	err := s.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
		&v.ThumbnailURL, &v.DurationSecs, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// Create inserts a video owned by ownerID and returns the stored record.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration_secs, is_published) VALUES (?,?,?,?,?,?,?)",
		v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.DurationSecs, v.IsPublished)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	stored, err := r.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = stored
	return nil
}

// GetByID fetches a single video.
func (r *VideoRepo) GetByID(ctx context.Context, id uint64) (model.Video, error) {
	return scanVideo(r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id))
}

// Exists reports whether a video row exists.
func (r *VideoRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM videos WHERE id=? LIMIT 1", id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListParams narrows and orders the video listing.
type ListParams struct {
	Query    string // optional case-insensitive title substring
	OwnerID  uint64 // optional owner filter (0 = all)
	SortBy   string // one of title, views, created_at
	SortDesc bool
	Page     int
	Limit    int
}

// List returns a page of published videos plus the total count for the
// same filter.
func (r *VideoRepo) List(ctx context.Context, p ListParams) ([]model.Video, int, error) {
	where := "WHERE is_published=1"
	args := []interface{}{}
	if p.Query != "" {
		where += " AND title LIKE ?"
		args = append(args, "%"+p.Query+"%")
	}
	if p.OwnerID != 0 {
		where += " AND owner_id=?"
		args = append(args, p.OwnerID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol := "created_at"
	switch p.SortBy {
	case "title", "views", "created_at":
		sortCol = p.SortBy
	}
	dir := "ASC"
	if p.SortDesc || p.SortBy == "" {
		dir = "DESC"
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	offset := (p.Page - 1) * p.Limit

	q := fmt.Sprintf("SELECT %s FROM videos %s ORDER BY %s %s LIMIT ? OFFSET ?", videoColumns, where, sortCol, dir)
	rows, err := r.DB.QueryContext(ctx, q, append(args, p.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// ListByOwner returns all videos of a channel, newest first, regardless of
// publish state.
func (r *VideoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Video, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update writes the mutable fields back to the row.
func (r *VideoRepo) Update(ctx context.Context, v *model.Video) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET title=?, description=?, thumbnail_url=?, is_published=? WHERE id=?",
		v.Title, v.Description, v.ThumbnailURL, v.IsPublished, v.ID)
	return err
}

// Delete removes a video row. Comments and playlist links cascade.
func (r *VideoRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	return err
}

// OwnerStats aggregates totals for a channel dashboard.
func (r *VideoRepo) OwnerStats(ctx context.Context, ownerID uint64) (totalVideos int, totalViews uint64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(views),0) FROM videos WHERE owner_id=?", ownerID).
		Scan(&totalVideos, &totalViews)
	return
}
