// Package repository persists raffle entries and admin credentials.
// Stores translate driver-specific failures into the sentinel values
// below so higher layers never inspect driver error types.
package repository

import "errors"

// ErrEntryNotFound is returned when no entry matches the given id.
var ErrEntryNotFound = errors.New("entry not found")

// ErrSlotTaken is returned when an insert collides with the unique index
// on slot_number.  This is the final arbiter of concurrent commits.
var ErrSlotTaken = errors.New("slot already taken")

// ErrAdminNotFound is returned when no admin matches a lookup.
var ErrAdminNotFound = errors.New("admin not found")

// ErrUsernameExists is returned when seeding a duplicate admin username.
var ErrUsernameExists = errors.New("username already exists")

// ErrInvalidRefresh is returned for unknown, revoked or expired refresh
// tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")
