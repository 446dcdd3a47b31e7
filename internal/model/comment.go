package model

import "time"

// Comment mirrors the `comments` table.  A comment belongs to a video and
// is owned by the user who wrote it.
type Comment struct {
    ID        uint64    `json:"id"`
    VideoID   uint64    `json:"video_id"`
    OwnerID   uint64    `json:"owner_id"`
    Content   string    `json:"content"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
