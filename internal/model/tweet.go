package model

import "time"

// Tweet mirrors the `tweets` table.
type Tweet struct {
    ID        uint64    `json:"id"`
    OwnerID   uint64    `json:"owner_id"`
    Content   string    `json:"content"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
