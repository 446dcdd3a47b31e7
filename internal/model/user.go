package model

import "time"

// User represents an application user record as stored in the `users`
// table.  A user doubles as a channel: subscriptions reference users on
// both sides.  The PasswordHash and RefreshTokenHash columns never leave
// the repository/auth layer; handlers work with the Public projection.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Username         – unique handle, stored lowercase.
//  Email            – unique email address, stored lowercase.
//  FullName         – display name.
//  PasswordHash     – bcrypt hashed password.
//  AvatarURL        – durable URL of the uploaded avatar.
//  CoverImageURL    – durable URL of the uploaded cover image (nullable).
//  RefreshTokenHash – SHA-256 hex digest of the single live refresh token
//                     (null when logged out).  Mutated only by the session
//                     service.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
    ID               uint64     // users.id
    Username         string     // users.username
    Email            string     // users.email
    FullName         string     // users.full_name
    PasswordHash     string     // users.password_hash
    AvatarURL        string     // users.avatar_url
    CoverImageURL    *string    // users.cover_image_url (nullable)
    RefreshTokenHash *string    // users.refresh_token_hash (nullable)
    CreatedAt        time.Time  // users.created_at
    UpdatedAt        time.Time  // users.updated_at
}

// PublicUser is the projection of a user that is safe to return to
// clients and to bind to the request context: no password hash, no
// refresh token.
type PublicUser struct {
    ID            uint64    `json:"id"`
    Username      string    `json:"username"`
    Email         string    `json:"email"`
    FullName      string    `json:"full_name"`
    AvatarURL     string    `json:"avatar_url"`
    CoverImageURL *string   `json:"cover_image_url,omitempty"`
    CreatedAt     time.Time `json:"created_at"`
}

// Public strips the credential fields from a user record.
func (u User) Public() PublicUser {
    return PublicUser{
        ID:            u.ID,
        Username:      u.Username,
        Email:         u.Email,
        FullName:      u.FullName,
        AvatarURL:     u.AvatarURL,
        CoverImageURL: u.CoverImageURL,
        CreatedAt:     u.CreatedAt,
    }
}
