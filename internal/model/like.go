package model

import "time"

// Like target kinds.  One table covers video, comment and tweet likes;
// the kind column keeps the three keyspaces independent.
const (
    LikeKindVideo   = "video"
    LikeKindComment = "comment"
    LikeKindTweet   = "tweet"
)

// Like mirrors the `likes` table.  At most one row may exist for a given
// (liked_by, target_id, target_kind) key; this is enforced by a unique
// key and relied upon by the toggle path.
type Like struct {
    ID         uint64    `json:"id"`
    LikedBy    uint64    `json:"liked_by"`
    TargetID   uint64    `json:"target_id"`
    TargetKind string    `json:"target_kind"`
    CreatedAt  time.Time `json:"created_at"`
}
