package model

import "time"

// Subscription mirrors the `subscriptions` table.  Presence of a row means
// the subscriber follows the channel; the pair is unique.
type Subscription struct {
    ID           uint64    `json:"id"`
    SubscriberID uint64    `json:"subscriber_id"`
    ChannelID    uint64    `json:"channel_id"`
    CreatedAt    time.Time `json:"created_at"`
}
