package repository

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/raffle-reservation/internal/utils"
)

func TestAdminRepoSeed(t *testing.T) {
    repo := NewAdminRepo(openTestDB(t))
    ctx := context.Background()

    created, err := repo.EnsureSeed(ctx, " Admin ", "pw", 4)
    if err != nil || !created {
        t.Fatalf("EnsureSeed = %v, %v", created, err)
    }
    created, err = repo.EnsureSeed(ctx, "admin", "other", 4)
    if err != nil || created {
        t.Fatalf("second EnsureSeed = %v, %v; want false, nil", created, err)
    }

    a, err := repo.GetByUsername(ctx, "ADMIN")
    if err != nil {
        t.Fatalf("GetByUsername: %v", err)
    }
    if !utils.VerifyPassword(a.PasswordHash, "pw") {
        t.Fatal("seeded password should be kept")
    }
    if _, err := repo.GetByID(ctx, a.ID); err != nil {
        t.Fatalf("GetByID: %v", err)
    }
    if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrAdminNotFound) {
        t.Fatalf("GetByUsername(ghost) err = %v", err)
    }
    if _, err := repo.Create(ctx, "admin", "x", 4); !errors.Is(err, ErrUsernameExists) {
        t.Fatalf("duplicate Create err = %v", err)
    }
}

func TestTokenRepoLifecycle(t *testing.T) {
    db := openTestDB(t)
    admins := NewAdminRepo(db)
    tokens := NewTokenRepo(db)
    ctx := context.Background()

    id, err := admins.Create(ctx, "admin", "pw", 4)
    if err != nil {
        t.Fatalf("Create admin: %v", err)
    }
    hash := utils.HashRefreshRaw("raw")
    if err := tokens.StoreRefresh(ctx, id, hash, time.Now().Add(time.Hour)); err != nil {
        t.Fatalf("StoreRefresh: %v", err)
    }
    got, err := tokens.ValidateRefresh(ctx, hash)
    if err != nil || got != id {
        t.Fatalf("ValidateRefresh = %q, %v", got, err)
    }

    revoked, err := tokens.RevokeByHash(ctx, hash)
    if err != nil || !revoked {
        t.Fatalf("RevokeByHash = %v, %v", revoked, err)
    }
    if _, err := tokens.ValidateRefresh(ctx, hash); !errors.Is(err, ErrInvalidRefresh) {
        t.Fatalf("revoked token err = %v", err)
    }

    expired := utils.HashRefreshRaw("old")
    _ = tokens.StoreRefresh(ctx, id, expired, time.Now().Add(-time.Hour))
    if _, err := tokens.ValidateRefresh(ctx, expired); !errors.Is(err, ErrInvalidRefresh) {
        t.Fatalf("expired token err = %v", err)
    }
    if _, err := tokens.ValidateRefresh(ctx, "unknown"); !errors.Is(err, ErrInvalidRefresh) {
        t.Fatalf("unknown token err = %v", err)
    }
}
