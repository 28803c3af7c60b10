package repository

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "go.mongodb.org/mongo-driver/bson"
    "go.mongodb.org/mongo-driver/mongo"
    "go.mongodb.org/mongo-driver/mongo/options"

    "github.com/iliyamo/raffle-reservation/internal/model"
    "github.com/iliyamo/raffle-reservation/internal/utils"
)

// Collections backing admin login when STORE_DRIVER=mongo.
const (
    AdminsCollection        = "admins"
    RefreshTokensCollection = "refresh_tokens"
)

// MongoAdminRepo is the document-store counterpart of AdminRepo.
type MongoAdminRepo struct {
    coll *mongo.Collection
}

func NewMongoAdminRepo(db *mongo.Database) *MongoAdminRepo {
    return &MongoAdminRepo{coll: db.Collection(AdminsCollection)}
}

// EnsureIndexes makes usernames unique.
func (r *MongoAdminRepo) EnsureIndexes(ctx context.Context) error {
    _, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
        Keys:    bson.D{{Key: "username", Value: 1}},
        Options: options.Index().SetUnique(true).SetName("ux_admins_username"),
    })
    if err != nil {
        return fmt.Errorf("create admin indexes: %w", err)
    }
    return nil
}

func (r *MongoAdminRepo) Create(ctx context.Context, username, password string, cost int) (string, error) {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return "", err
    }
    a := model.Admin{
        ID:           uuid.NewString(),
        Username:     normalizeUsername(username),
        PasswordHash: hash,
        CreatedAt:    time.Now().UTC(),
    }
    if _, err := r.coll.InsertOne(ctx, a); err != nil {
        if mongo.IsDuplicateKeyError(err) {
            return "", ErrUsernameExists
        }
        return "", fmt.Errorf("insert admin: %w", err)
    }
    return a.ID, nil
}

// EnsureSeed behaves like AdminRepo.EnsureSeed.
func (r *MongoAdminRepo) EnsureSeed(ctx context.Context, username, password string, cost int) (bool, error) {
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

func (r *MongoAdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
    return r.findOne(ctx, bson.M{"username": normalizeUsername(username)})
}

func (r *MongoAdminRepo) GetByID(ctx context.Context, id string) (model.Admin, error) {
    return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAdminRepo) findOne(ctx context.Context, filter bson.M) (model.Admin, error) {
    var a model.Admin
    err := r.coll.FindOne(ctx, filter).Decode(&a)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return model.Admin{}, ErrAdminNotFound
    }
    if err != nil {
        return model.Admin{}, fmt.Errorf("get admin: %w", err)
    }
    a.CreatedAt = a.CreatedAt.UTC()
    return a, nil
}

// MongoTokenRepo is the document-store counterpart of TokenRepo.
type MongoTokenRepo struct {
    coll *mongo.Collection
}

func NewMongoTokenRepo(db *mongo.Database) *MongoTokenRepo {
    return &MongoTokenRepo{coll: db.Collection(RefreshTokensCollection)}
}

// EnsureIndexes makes token hashes unique and lets MongoDB expire old rows.
func (r *MongoTokenRepo) EnsureIndexes(ctx context.Context) error {
    _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
        {
            Keys:    bson.D{{Key: "token_hash", Value: 1}},
            Options: options.Index().SetUnique(true).SetName("ux_refresh_tokens_hash"),
        },
        {
            Keys:    bson.D{{Key: "expires_at", Value: 1}},
            Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_refresh_tokens_expires"),
        },
    })
    if err != nil {
        return fmt.Errorf("create token indexes: %w", err)
    }
    return nil
}

func (r *MongoTokenRepo) StoreRefresh(ctx context.Context, adminID, tokenHash string, exp time.Time) error {
    _, err := r.coll.InsertOne(ctx, model.RefreshToken{
        ID:        uuid.NewString(),
        AdminID:   adminID,
        TokenHash: tokenHash,
        ExpiresAt: exp.UTC(),
        CreatedAt: time.Now().UTC(),
    })
    if err != nil {
        return fmt.Errorf("store refresh: %w", err)
    }
    return nil
}

func (r *MongoTokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
    var t model.RefreshToken
    err := r.coll.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&t)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return "", ErrInvalidRefresh
    }
    if err != nil {
        return "", fmt.Errorf("validate refresh: %w", err)
    }
    if t.RevokedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
        return "", ErrInvalidRefresh
    }
    return t.AdminID, nil
}

func (r *MongoTokenRepo) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
    res, err := r.coll.UpdateOne(ctx,
        bson.M{"token_hash": tokenHash, "revoked_at": bson.M{"$exists": false}},
        bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}})
    if err != nil {
        return false, fmt.Errorf("revoke refresh: %w", err)
    }
    return res.ModifiedCount > 0, nil
}

func (r *MongoTokenRepo) RevokeAllForAdmin(ctx context.Context, adminID string) error {
    _, err := r.coll.UpdateMany(ctx,
        bson.M{"admin_id": adminID, "revoked_at": bson.M{"$exists": false}},
        bson.M{"$set": bson.M{"revoked_at": time.Now().UTC()}})
    if err != nil {
        return fmt.Errorf("revoke all refresh: %w", err)
    }
    return nil
}
