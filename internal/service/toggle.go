package service

import (
	"context"
	"errors"
	"time"

	"github.com/kavyand/vidstream/internal/metrics"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/utils"
)

// Toggle states reported to handlers. Created maps to HTTP 201, removed
// to 200.
const (
	ToggleCreated = "created"
	ToggleRemoved = "removed"
)

// ToggleRecord is the presence relation in store-neutral form. Likes and
// subscriptions both project onto it.
type ToggleRecord struct {
	ID        uint64    `json:"id"`
	ActorID   uint64    `json:"actor_id"`
	TargetID  uint64    `json:"target_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleStore is the persistence contract of the toggle engine. Find
// returns nil without error when no record exists. Create must surface
// repository.ErrDuplicate on a unique-key violation; the engine recovers
// it as a lost race, never as a caller-visible error.
type ToggleStore interface {
	Find(ctx context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error)
	Create(ctx context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error)
	Delete(ctx context.Context, id uint64) error
}

// ExistsFunc answers whether the toggle target (video, comment, tweet or
// channel) exists. Target existence is always enforced before toggling.
type ExistsFunc func(ctx context.Context, targetID uint64, kind string) (bool, error)

// ToggleResult reports what a toggle call did. Record is set when the
// state is created and nil when removed.
type ToggleResult struct {
	State  string        `json:"state"`
	Record *ToggleRecord `json:"record"`
}

// ToggleEngine implements the idempotent create-or-remove used for likes
// and subscriptions. The lookup-then-insert sequence is not atomic; the
// store's unique key plus duplicate recovery below make N concurrent
// toggles from the absent state leave exactly one record.
type ToggleEngine struct {
	Store   ToggleStore
	Targets ExistsFunc
}

func NewToggleEngine(store ToggleStore, targets ExistsFunc) *ToggleEngine {
	return &ToggleEngine{Store: store, Targets: targets}
}

// Toggle flips the presence of (actorID, targetID, kind). A missing target
// is a 404 before anything is written.
func (e *ToggleEngine) Toggle(ctx context.Context, actorID, targetID uint64, kind string) (ToggleResult, error) {
	ok, err := e.Targets(ctx, targetID, kind)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ToggleResult{}, err
		}
		return ToggleResult{}, utils.Internal("could not check target")
	}
	if !ok {
		return ToggleResult{}, utils.NotFound(kind + " not found")
	}

	existing, err := e.Store.Find(ctx, actorID, targetID, kind)
	if err != nil {
		return ToggleResult{}, e.storeErr(err)
	}
	if existing != nil {
		if err := e.Store.Delete(ctx, existing.ID); err != nil {
			return ToggleResult{}, e.storeErr(err)
		}
		metrics.Toggles.WithLabelValues(kind, ToggleRemoved).Inc()
		return ToggleResult{State: ToggleRemoved}, nil
	}

	for attempt := 0; attempt < 4; attempt++ {
		rec, err := e.Store.Create(ctx, actorID, targetID, kind)
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent toggle inserted between our lookup and insert.
			// That toggle won; report created with the winning record.
			rec, err = e.Store.Find(ctx, actorID, targetID, kind)
			if err != nil {
				return ToggleResult{}, e.storeErr(err)
			}
			if rec == nil {
				// The winner was removed again in the meantime; our call
				// becomes the creating one.
				continue
			}
		} else if err != nil {
			return ToggleResult{}, e.storeErr(err)
		}
		metrics.Toggles.WithLabelValues(kind, ToggleCreated).Inc()
		return ToggleResult{State: ToggleCreated, Record: rec}, nil
	}
	return ToggleResult{}, utils.Internal("toggle failed")
}

func (e *ToggleEngine) storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return utils.Internal("toggle failed")
}
