// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Queue names. Both queues are durable; publishers declare them
// idempotently before sending.
const (
	VideoPublishedQueue    = "video.published"
	ChannelSubscribedQueue = "channel.subscribed"
)

// VideoPublishedEvent is published when a video goes live. It carries
// enough for downstream consumers to notify subscribers or feed analytics
// without querying the primary database.
type VideoPublishedEvent struct {
	VideoID     uint64 `json:"video_id"`
	OwnerID     uint64 `json:"owner_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
}

// ChannelSubscribedEvent is published when a subscription toggle lands in
// the subscribed state.
type ChannelSubscribedEvent struct {
	SubscriberID uint64 `json:"subscriber_id"`
	ChannelID    uint64 `json:"channel_id"`
	SubscribedAt string `json:"subscribed_at"`
}
