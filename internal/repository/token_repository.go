package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenRepo persists/validates admin refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, adminID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, admin_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)",
		uuid.NewString(), adminID, tokenHash, exp.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store refresh: %w", err)
	}
	return nil
}

// ValidateRefresh returns the admin ID if a non-revoked, non-expired token
// exists, ErrInvalidRefresh otherwise.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		adminID   string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT admin_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&adminID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidRefresh
	}
	if err != nil {
		return "", fmt.Errorf("validate refresh: %w", err)
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return "", ErrInvalidRefresh
	}
	return adminID, nil
}

// RevokeByHash marks a token as revoked.  The boolean reports whether an
// active token was found.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		time.Now().UTC(), tokenHash)
	if err != nil {
		return false, fmt.Errorf("revoke refresh: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAllForAdmin revokes all of an admin's active tokens.
func (r *TokenRepo) RevokeAllForAdmin(ctx context.Context, adminID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE admin_id=? AND revoked_at IS NULL",
		time.Now().UTC(), adminID)
	return err
}
