package service

import (
	"context"

	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/repository"
)

// LikeToggleStore adapts LikeRepo to the engine's store contract.
type LikeToggleStore struct{ Likes *repository.LikeRepo }

func (s LikeToggleStore) Find(ctx context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error) {
	l, err := s.Likes.Find(ctx, actorID, targetID, kind)
	if err != nil || l == nil {
		return nil, err
	}
	return likeRecord(l), nil
}

func (s LikeToggleStore) Create(ctx context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error) {
	l, err := s.Likes.Create(ctx, actorID, targetID, kind)
	if err != nil {
		return nil, err
	}
	return likeRecord(l), nil
}

func (s LikeToggleStore) Delete(ctx context.Context, id uint64) error {
	return s.Likes.Delete(ctx, id)
}

func likeRecord(l *model.Like) *ToggleRecord {
	return &ToggleRecord{ID: l.ID, ActorID: l.LikedBy, TargetID: l.TargetID, Kind: l.TargetKind, CreatedAt: l.CreatedAt}
}

// SubscriptionKind is the single kind the subscription store serves.
const SubscriptionKind = "channel"

// SubscriptionToggleStore adapts SubscriptionRepo to the engine's store
// contract. The kind argument is fixed; the pair is the key.
type SubscriptionToggleStore struct{ Subs *repository.SubscriptionRepo }

func (s SubscriptionToggleStore) Find(ctx context.Context, actorID, targetID uint64, _ string) (*ToggleRecord, error) {
	sub, err := s.Subs.Find(ctx, actorID, targetID)
	if err != nil || sub == nil {
		return nil, err
	}
	return subRecord(sub), nil
}

func (s SubscriptionToggleStore) Create(ctx context.Context, actorID, targetID uint64, _ string) (*ToggleRecord, error) {
	sub, err := s.Subs.Create(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	return subRecord(sub), nil
}

func (s SubscriptionToggleStore) Delete(ctx context.Context, id uint64) error {
	return s.Subs.Delete(ctx, id)
}

func subRecord(s *model.Subscription) *ToggleRecord {
	return &ToggleRecord{ID: s.ID, ActorID: s.SubscriberID, TargetID: s.ChannelID, Kind: SubscriptionKind, CreatedAt: s.CreatedAt}
}
