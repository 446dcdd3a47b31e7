package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kavyand/vidstream/internal/model"
)

// SubscriptionRepo persists channel subscriptions. Same toggle discipline
// as likes: the unique key on (subscriber_id, channel_id) resolves
// concurrent inserts.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

const subscriptionColumns = "id,subscriber_id,channel_id,created_at"

// Find returns the subscription for a (subscriber, channel) pair, or nil.
func (r *SubscriptionRepo) Find(ctx context.Context, subscriberID, channelID uint64) (*model.Subscription, error) {
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE subscriber_id=? AND channel_id=? LIMIT 1",
		subscriberID, channelID).
		Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a subscription. ErrDuplicate when the pair already exists.
func (r *SubscriptionRepo) Create(ctx context.Context, subscriberID, channelID uint64) (*model.Subscription, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (subscriber_id, channel_id) VALUES (?,?)",
		subscriberID, channelID)
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
	var s model.Subscription
	err = r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE id=?", id).
		Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a subscription by primary key.
func (r *SubscriptionRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM subscriptions WHERE id=?", id)
	return err
}

// CountByChannel counts a channel's subscribers.
func (r *SubscriptionRepo) CountByChannel(ctx context.Context, channelID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE channel_id=?", channelID).Scan(&n)
	return n, err
}

// ListSubscribers returns the users subscribed to a channel, newest first.
func (r *SubscriptionRepo) ListSubscribers(ctx context.Context, channelID uint64) ([]model.PublicUser, error) {
	return r.listUsers(ctx,
		`SELECT u.id,u.username,u.email,u.full_name,u.avatar_url,u.cover_image_url,u.created_at
		 FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		 WHERE s.channel_id=? ORDER BY s.created_at DESC`, channelID)
}

// ListSubscribedChannels returns the channels a user follows, newest first.
func (r *SubscriptionRepo) ListSubscribedChannels(ctx context.Context, subscriberID uint64) ([]model.PublicUser, error) {
	return r.listUsers(ctx,
		`SELECT u.id,u.username,u.email,u.full_name,u.avatar_url,u.cover_image_url,u.created_at
		 FROM subscriptions s JOIN users u ON u.id = s.channel_id
		 WHERE s.subscriber_id=? ORDER BY s.created_at DESC`, subscriberID)
}

func (r *SubscriptionRepo) listUsers(ctx context.Context, query string, arg uint64) ([]model.PublicUser, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PublicUser
	for rows.Next() {
		var (
			u     model.PublicUser
			cover sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &cover, &u.CreatedAt); err != nil {
			return nil, err
		}
		if cover.Valid {
			u.CoverImageURL = &cover.String
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
