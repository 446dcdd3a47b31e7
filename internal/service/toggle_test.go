package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/utils"
)

// fakeToggleStore enforces (actor, target, kind) uniqueness under a mutex,
// the way the real table's unique key does.
type fakeToggleStore struct {
	mu      sync.Mutex
	nextID  uint64
	records map[uint64]ToggleRecord
	findErr error
}

func newFakeToggleStore() *fakeToggleStore {
	return &fakeToggleStore{records: map[uint64]ToggleRecord{}}
}

func (s *fakeToggleStore) key(actorID, targetID uint64, kind string) func(ToggleRecord) bool {
	return func(r ToggleRecord) bool {
		return r.ActorID == actorID && r.TargetID == targetID && r.Kind == kind
	}
}

func (s *fakeToggleStore) Find(_ context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	match := s.key(actorID, targetID, kind)
	for _, r := range s.records {
		if match(r) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeToggleStore) Create(_ context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := s.key(actorID, targetID, kind)
	for _, r := range s.records {
		if match(r) {
			return nil, repository.ErrDuplicate
		}
	}
	s.nextID++
	rec := ToggleRecord{ID: s.nextID, ActorID: actorID, TargetID: targetID, Kind: kind}
	s.records[rec.ID] = rec
	return &rec, nil
}

func (s *fakeToggleStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *fakeToggleStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func targetsAlwaysExist(context.Context, uint64, string) (bool, error) { return true, nil }

func TestToggleCreateRemoveCreate(t *testing.T) {
	store := newFakeToggleStore()
	e := NewToggleEngine(store, targetsAlwaysExist)
	ctx := context.Background()

	res, err := e.Toggle(ctx, 1, 10, "video")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if res.State != ToggleCreated || res.Record == nil {
		t.Fatalf("first toggle = %+v, want created with record", res)
	}

	res, err = e.Toggle(ctx, 1, 10, "video")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.State != ToggleRemoved {
		t.Fatalf("second toggle state = %q, want removed", res.State)
	}
	if store.count() != 0 {
		t.Fatalf("store has %d records after removal, want 0", store.count())
	}

	res, err = e.Toggle(ctx, 1, 10, "video")
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if res.State != ToggleCreated {
		t.Fatalf("third toggle state = %q, want created", res.State)
	}
}

func TestToggleMissingTargetIs404(t *testing.T) {
	e := NewToggleEngine(newFakeToggleStore(), func(context.Context, uint64, string) (bool, error) {
		return false, nil
	})
	_, err := e.Toggle(context.Background(), 1, 10, "video")
	var apiErr *utils.ApiError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("got %v, want a 404 ApiError", err)
	}
}

func TestToggleDistinctKindsAreIndependent(t *testing.T) {
	store := newFakeToggleStore()
	e := NewToggleEngine(store, targetsAlwaysExist)
	ctx := context.Background()

	if _, err := e.Toggle(ctx, 1, 10, "video"); err != nil {
		t.Fatalf("video toggle: %v", err)
	}
	if _, err := e.Toggle(ctx, 1, 10, "comment"); err != nil {
		t.Fatalf("comment toggle: %v", err)
	}
	if store.count() != 2 {
		t.Fatalf("store has %d records, want 2 (one per kind)", store.count())
	}
}

// raceStore forces the duplicate-key path: the engine's Find sees nothing,
// then Create collides with a concurrent insert.
type raceStore struct {
	*fakeToggleStore
	finds int
}

func (s *raceStore) Find(ctx context.Context, actorID, targetID uint64, kind string) (*ToggleRecord, error) {
	s.finds++
	if s.finds == 1 {
		// Simulate the winner inserting after our lookup.
		if _, err := s.fakeToggleStore.Create(ctx, actorID, targetID, kind); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.fakeToggleStore.Find(ctx, actorID, targetID, kind)
}

func TestToggleRecoversLostInsertRace(t *testing.T) {
	store := &raceStore{fakeToggleStore: newFakeToggleStore()}
	e := NewToggleEngine(store, targetsAlwaysExist)

	res, err := e.Toggle(context.Background(), 1, 10, "video")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.State != ToggleCreated || res.Record == nil {
		t.Fatalf("got %+v, want created with the winning record", res)
	}
	if store.count() != 1 {
		t.Fatalf("store has %d records, want 1", store.count())
	}
}

func TestConcurrentTogglesFromAbsentLeaveAtMostOneRecord(t *testing.T) {
	store := newFakeToggleStore()
	e := NewToggleEngine(store, targetsAlwaysExist)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := e.Toggle(context.Background(), 1, 10, "video"); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	if c := store.count(); c > 1 {
		t.Fatalf("store has %d records for one (actor, target, kind), want at most 1", c)
	}
}
