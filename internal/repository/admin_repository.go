package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/utils"
)

// AdminRepo reads and seeds the admins table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// Create hashes password and inserts a new admin, returning its ID.
func (r *AdminRepo) Create(ctx context.Context, username, password string, cost int) (string, error) {
	username = normalizeUsername(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO admins (id, username, password_hash, created_at) VALUES (?,?,?,?)",
		id, username, hash, time.Now().UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return "", ErrUsernameExists
		}
		return "", fmt.Errorf("insert admin: %w", err)
	}
	return id, nil
}

// EnsureSeed creates the admin account when it does not exist yet.  An
// existing account keeps its password; the boolean reports whether a row
// was created.
func (r *AdminRepo) EnsureSeed(ctx context.Context, username, password string, cost int) (bool, error) {
	if _, err := r.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrAdminNotFound) {
		return false, err
	}
	if _, err := r.Create(ctx, username, password, cost); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByUsername fetches an admin by normalized username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	return r.getOne(ctx, "username", normalizeUsername(username))
}

// GetByID fetches an admin by id.
func (r *AdminRepo) GetByID(ctx context.Context, id string) (model.Admin, error) {
	return r.getOne(ctx, "id", id)
}

func (r *AdminRepo) getOne(ctx context.Context, column, value string) (model.Admin, error) {
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at FROM admins WHERE "+column+"=? LIMIT 1",
		value).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
