package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/kavyand/vidstream/internal/utils"
)

func TestAssertOwner(t *testing.T) {
	if err := AssertOwner(5, 5); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}

	err := AssertOwner(5, 6)
	var apiErr *utils.ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an ApiError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", apiErr.StatusCode)
	}
}
