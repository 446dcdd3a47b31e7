package model

import "time"

// Video mirrors the `videos` table.  OwnerID is set at creation and never
// changes; every mutating operation checks it against the acting user.
type Video struct {
    ID           uint64    `json:"id"`
    OwnerID      uint64    `json:"owner_id"`
    Title        string    `json:"title"`
    Description  string    `json:"description"`
    VideoURL     string    `json:"video_url"`
    ThumbnailURL string    `json:"thumbnail_url"`
    DurationSecs uint32    `json:"duration_secs"`
    Views        uint64    `json:"views"`
    IsPublished  bool      `json:"is_published"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}
