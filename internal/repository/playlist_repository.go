package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kavyand/vidstream/internal/model"
)

// PlaylistRepo provides persistence for playlists and their video links.
type PlaylistRepo struct{ DB *sql.DB }

func NewPlaylistRepo(db *sql.DB) *PlaylistRepo { return &PlaylistRepo{DB: db} }

const playlistColumns = "id,owner_id,name,description,created_at,updated_at"

// Create inserts a playlist and reads back the stored row.
func (r *PlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO playlists (owner_id, name, description) VALUES (?,?,?)",
		p.OwnerID, p.Name, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id=?", id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a playlist together with the IDs of its videos.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uint64) (model.Playlist, error) {
	var p model.Playlist
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Playlist{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT video_id FROM playlist_videos WHERE playlist_id=? ORDER BY added_at", id)
	if err != nil {
		return model.Playlist{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var vid uint64
		if err := rows.Scan(&vid); err != nil {
			return model.Playlist{}, err
		}
		p.VideoIDs = append(p.VideoIDs, vid)
	}
	return p, rows.Err()
}

// ListByOwner returns a user's playlists, newest first.
func (r *PlaylistRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Playlist
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update changes name and description.
func (r *PlaylistRepo) Update(ctx context.Context, id uint64, name, description string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE playlists SET name=?, description=? WHERE id=?", name, description, id)
	return err
}

// Delete removes a playlist; its video links cascade.
func (r *PlaylistRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM playlists WHERE id=?", id)
	return err
}

// AddVideo links a video to a playlist. ErrDuplicate when already present.
func (r *PlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO playlist_videos (playlist_id, video_id) VALUES (?,?)", playlistID, videoID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDuplicate
	}
	return err
}

// RemoveVideo unlinks a video. sql.ErrNoRows when the link did not exist.
func (r *PlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM playlist_videos WHERE playlist_id=? AND video_id=?", playlistID, videoID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
