package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA-256 hashing for persisted refresh tokens
    "encoding/hex"  // hex encoding for digests
    "errors"        // sentinel error values for verification failures
    "time"          // expiry and issuance timestamps

    "github.com/golang-jwt/jwt/v5" // JWT library for signing and parsing tokens
    "github.com/google/uuid"       // per-token nonce so rotation always changes the token
)

// Verification failures are reported through these sentinels so callers can
// map them onto distinct HTTP statuses.  ErrTokenMalformed covers anything
// that is not even a parseable JWT; ErrTokenSignature covers a wrong secret
// (including an access token presented where a refresh token is expected,
// since the two kinds are signed with independent secrets).
var (
    ErrTokenExpired   = errors.New("token expired")
    ErrTokenSignature = errors.New("token signature invalid")
    ErrTokenMalformed = errors.New("token malformed")
)

// Token is a signed JWT together with its expiry.  The same shape is used
// for both access and refresh tokens; the kind is determined by which
// secret signed it.
type Token struct {
    Value string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// IssueAccess signs a short-lived HS256 access token for a user.  Claims are
// the standard sub/iat/exp; ttlMin is the lifetime in minutes.
func IssueAccess(secret string, userID uint64, ttlMin int) (Token, error) {
    return issue(secret, userID, time.Duration(ttlMin)*time.Minute)
}

// IssueRefresh signs a long-lived HS256 refresh token for a user.  It must be
// signed with the refresh secret, never the access secret, so that a leaked
// access token cannot be replayed to mint new sessions.
func IssueRefresh(secret string, userID uint64, ttlDays int) (Token, error) {
    return issue(secret, userID, time.Duration(ttlDays)*24*time.Hour)
}

func issue(secret string, userID uint64, ttl time.Duration) (Token, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    // The jti claim guarantees two tokens minted in the same second still
    // differ, so rotation always produces a new digest.
    claims := jwt.MapClaims{
        "sub": userID,
        "iat": now.Unix(),
        "exp": exp.Unix(),
        "jti": uuid.NewString(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return Token{}, err
    }
    return Token{Value: signed, Exp: exp}, nil
}

// VerifyToken parses a token against the given secret and returns the user ID
// from the sub claim together with the issuance time.  It is pure: no store
// access, no side effects.  Failures are one of the sentinel errors above.
func VerifyToken(secret, raw string) (uint64, time.Time, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC before touching the secret.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenSignature
        }
        return []byte(secret), nil
    })
    if err != nil {
        switch {
        case errors.Is(err, jwt.ErrTokenExpired):
            return 0, time.Time{}, ErrTokenExpired
        case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignature):
            return 0, time.Time{}, ErrTokenSignature
        default:
            return 0, time.Time{}, ErrTokenMalformed
        }
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return 0, time.Time{}, ErrTokenMalformed
    }
    uid, ok := subjectID(claims)
    if !ok {
        return 0, time.Time{}, ErrTokenMalformed
    }
    var iat time.Time
    if v, ok := claims["iat"].(float64); ok {
        iat = time.Unix(int64(v), 0).UTC()
    }
    return uid, iat, nil
}

// subjectID extracts the numeric user ID from the sub claim.  JWT numbers
// decode as float64; string subjects are not used by this service.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    v, ok := claims["sub"].(float64)
    if !ok || v < 0 {
        return 0, false
    }
    return uint64(v), true
}

// HashRefreshToken returns the SHA-256 hex digest of a refresh token.  Only
// the digest is persisted on the user row; comparing digests is how the
// session layer detects a rotated or revoked token.
func HashRefreshToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
