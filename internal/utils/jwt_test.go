package utils

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	tok, err := IssueAccess("access-secret", 42, 15)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if tok.Value == "" {
		t.Fatal("expected a signed token")
	}
	if !tok.Exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", tok.Exp)
	}

	uid, iat, err := VerifyToken("access-secret", tok.Value)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("got user id %d, want 42", uid)
	}
	if iat.IsZero() {
		t.Fatal("expected a non-zero issuance time")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := IssueRefresh("refresh-secret", 7, 30)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	// An access token presented as a refresh token fails the same way.
	if _, _, err := VerifyToken("another-secret", tok.Value); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("got %v, want ErrTokenSignature", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := issue("s", 1, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := VerifyToken("s", tok.Value); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, err := VerifyToken("s", raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("VerifyToken(%q) = %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestHashRefreshTokenIsStable(t *testing.T) {
	a := HashRefreshToken("some-token")
	b := HashRefreshToken("some-token")
	if a != b {
		t.Fatalf("digest not stable: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("digest length %d, want 64 hex chars", len(a))
	}
	if HashRefreshToken("other-token") == a {
		t.Fatal("different tokens produced the same digest")
	}
}
