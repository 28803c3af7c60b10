package model

import "time"

// RoleAdmin is the only role issued by the login endpoint.
const RoleAdmin = "ADMIN"

// Admin mirrors the `admins` table.  There is normally a single row,
// seeded at startup from ADMIN_USERNAME / ADMIN_PASSWORD.
//
// Fields:
//  ID           – UUID primary key.
//  Username     – unique login name.
//  PasswordHash – bcrypt hash.
//  CreatedAt    – timestamp of creation.
type Admin struct {
    ID           string    `bson:"_id"`           // admins.id
    Username     string    `bson:"username"`      // admins.username
    PasswordHash string    `bson:"password_hash"` // admins.password_hash
    CreatedAt    time.Time `bson:"created_at"`    // admins.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
    ID        string     `bson:"_id"`                  // refresh_tokens.id
    AdminID   string     `bson:"admin_id"`             // refresh_tokens.admin_id
    TokenHash string     `bson:"token_hash"`           // refresh_tokens.token_hash
    ExpiresAt time.Time  `bson:"expires_at"`           // refresh_tokens.expires_at
    RevokedAt *time.Time `bson:"revoked_at,omitempty"` // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  `bson:"created_at"`           // refresh_tokens.created_at
}
