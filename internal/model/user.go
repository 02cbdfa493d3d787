package model

import "time"

// RoleUser and RoleAdmin are the only values stored in users.role.
// Regular users submit purchase requests; admins review them.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a row of the `users` table. Accounts are created
// out-of-band (there is no registration endpoint), so from this
// service's perspective the table is read-only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – optional display name, falls back to Username in UIs.
//  Role         – "user" or "admin".
type User struct {
	ID           uint64 // users.id
	Username     string // users.username
	PasswordHash string // users.password
	FirstName    string // users.first_name (nullable)
	Role         string // users.role
}

// DisplayName returns the name shown in greetings: the first name
// when present, otherwise the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
