package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

// fakeUserStore keeps refresh digests in memory, guarded for the
// concurrency tests.
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[uint64]model.User
	saveErr error
}

func newFakeUserStore(ids ...uint64) *fakeUserStore {
	s := &fakeUserStore{users: map[uint64]model.User{}}
	for _, id := range ids {
		s.users[id] = model.User{ID: id}
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeUserStore) SaveRefreshHash(_ context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.RefreshTokenHash = &hash
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) ClearRefreshHash(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.RefreshTokenHash = nil
	s.users[id] = u
	return nil
}

func newTestSession(store UserStore) *Session {
	return NewSession(store, "access-secret", "refresh-secret", 15, 30)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *utils.ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an ApiError, got %v", err)
	}
	return apiErr.StatusCode
}

func TestIssuePairPersistsDigest(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	pair, err := s.IssuePair(context.Background(), 1)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	u, _ := store.GetByID(context.Background(), 1)
	if u.RefreshTokenHash == nil {
		t.Fatal("refresh digest was not persisted")
	}
	if *u.RefreshTokenHash != utils.HashRefreshToken(pair.Refresh.Value) {
		t.Fatal("stored digest does not match the issued refresh token")
	}
}

func TestIssuePairFailsClosedOnStoreError(t *testing.T) {
	store := newFakeUserStore(1)
	store.saveErr = errors.New("disk on fire")
	s := newTestSession(store)

	_, err := s.IssuePair(context.Background(), 1)
	if got := statusOf(t, err); got != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", got)
	}
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	first, err := s.IssuePair(context.Background(), 1)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	second, err := s.Refresh(context.Background(), first.Refresh.Value)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.Refresh.Value == first.Refresh.Value {
		t.Fatal("refresh token was not rotated")
	}

	// Replaying the consumed token must fail with 401.
	_, err = s.Refresh(context.Background(), first.Refresh.Value)
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Fatalf("replay got status %d, want 401", got)
	}

	// The rotated token still works.
	if _, err := s.Refresh(context.Background(), second.Refresh.Value); err != nil {
		t.Fatalf("rotated token rejected: %v", err)
	}
}

func TestRefreshAfterRevokeFails(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	pair, err := s.IssuePair(context.Background(), 1)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if err := s.Revoke(context.Background(), 1); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	_, err = s.Refresh(context.Background(), pair.Refresh.Value)
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", got)
	}
	// Revoking again is a no-op, not an error.
	if err := s.Revoke(context.Background(), 1); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
}

func TestRefreshRejectsForgedAndForeignTokens(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	// Signed with the access secret instead of the refresh secret.
	access, err := utils.IssueAccess("access-secret", 1, 15)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	for _, raw := range []string{"garbage", access.Value} {
		_, err := s.Refresh(context.Background(), raw)
		if got := statusOf(t, err); got != http.StatusUnauthorized {
			t.Fatalf("Refresh(%q) got status %d, want 401", raw, got)
		}
	}
}

func TestRefreshUnknownUserIsUnauthorized(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	// A structurally valid token for a user that does not exist.
	tok, err := utils.IssueRefresh("refresh-secret", 999, 30)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	_, err = s.Refresh(context.Background(), tok.Value)
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", got)
	}
}

func TestIssuePairOverwritesPreviousSession(t *testing.T) {
	store := newFakeUserStore(1)
	s := newTestSession(store)

	first, err := s.IssuePair(context.Background(), 1)
	if err != nil {
		t.Fatalf("first IssuePair: %v", err)
	}
	if _, err := s.IssuePair(context.Background(), 1); err != nil {
		t.Fatalf("second IssuePair: %v", err)
	}
	// The first session's refresh token is dead after the second login.
	_, err = s.Refresh(context.Background(), first.Refresh.Value)
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", got)
	}
}
