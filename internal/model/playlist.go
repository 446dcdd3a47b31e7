package model

import "time"

// Playlist mirrors the `playlists` table.  The videos it contains live in
// the playlist_videos join table and are loaded separately.
type Playlist struct {
    ID          uint64    `json:"id"`
    OwnerID     uint64    `json:"owner_id"`
    Name        string    `json:"name"`
    Description string    `json:"description"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
    VideoIDs    []uint64  `json:"video_ids,omitempty"`
}
