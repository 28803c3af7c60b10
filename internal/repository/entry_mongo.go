package repository

import (
    "context"
    "errors"
    "fmt"
    "time"

    "go.mongodb.org/mongo-driver/bson"
    "go.mongodb.org/mongo-driver/mongo"
    "go.mongodb.org/mongo-driver/mongo/options"

    "github.com/iliyamo/raffle-reservation/internal/model"
)

// EntriesCollection is the MongoDB collection holding raffle entries.
const EntriesCollection = "entries"

// MongoEntryRepo stores raffle entries as MongoDB documents.  It offers
// the same guarantees as EntryRepo: a unique index on slot_number turns a
// concurrent second insert into ErrSlotTaken.
type MongoEntryRepo struct {
    coll *mongo.Collection
}

// NewMongoEntryRepo binds the repository to db.entries.  Call
// EnsureIndexes once at startup before serving traffic.
func NewMongoEntryRepo(db *mongo.Database) *MongoEntryRepo {
    return &MongoEntryRepo{coll: db.Collection(EntriesCollection)}
}

// EnsureIndexes creates the unique slot index and the ordering index.
func (r *MongoEntryRepo) EnsureIndexes(ctx context.Context) error {
    idxs := []mongo.IndexModel{
        {
            Keys:    bson.D{{Key: "slot_number", Value: 1}},
            Options: options.Index().SetUnique(true).SetName("ux_entries_slot_number"),
        },
        {
            Keys:    bson.D{{Key: "created_at", Value: 1}},
            Options: options.Index().SetName("ix_entries_created_at"),
        },
    }
    if _, err := r.coll.Indexes().CreateMany(ctx, idxs); err != nil {
        return fmt.Errorf("create entry indexes: %w", err)
    }
    return nil
}

// Create inserts e or returns ErrSlotTaken on a slot collision.
func (r *MongoEntryRepo) Create(ctx context.Context, e model.Entry) error {
    e.CreatedAt = e.CreatedAt.UTC()
    e.UpdatedAt = e.UpdatedAt.UTC()
    if _, err := r.coll.InsertOne(ctx, e); err != nil {
        if mongo.IsDuplicateKeyError(err) {
            return ErrSlotTaken
        }
        return fmt.Errorf("insert entry: %w", err)
    }
    return nil
}

// FindBySlot returns the entry holding slot, or nil when the slot is free.
func (r *MongoEntryRepo) FindBySlot(ctx context.Context, slot int) (*model.Entry, error) {
    var e model.Entry
    err := r.coll.FindOne(ctx, bson.M{"slot_number": slot}).Decode(&e)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("find entry by slot: %w", err)
    }
    normalizeTimes(&e)
    return &e, nil
}

// GetByID returns the entry with the given id or ErrEntryNotFound.
func (r *MongoEntryRepo) GetByID(ctx context.Context, id string) (model.Entry, error) {
    var e model.Entry
    err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return model.Entry{}, ErrEntryNotFound
    }
    if err != nil {
        return model.Entry{}, fmt.Errorf("get entry: %w", err)
    }
    normalizeTimes(&e)
    return e, nil
}

// List returns every entry ordered by creation time, oldest first.
func (r *MongoEntryRepo) List(ctx context.Context) ([]model.Entry, error) {
    opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "slot_number", Value: 1}})
    cur, err := r.coll.Find(ctx, bson.M{}, opts)
    if err != nil {
        return nil, fmt.Errorf("list entries: %w", err)
    }
    entries := make([]model.Entry, 0)
    if err := cur.All(ctx, &entries); err != nil {
        return nil, fmt.Errorf("decode entries: %w", err)
    }
    for i := range entries {
        normalizeTimes(&entries[i])
    }
    return entries, nil
}

// SetPaid overwrites the paid flag of entry id.
func (r *MongoEntryRepo) SetPaid(ctx context.Context, id string, paid bool, at time.Time) error {
    res, err := r.coll.UpdateOne(ctx,
        bson.M{"_id": id},
        bson.M{"$set": bson.M{"paid": paid, "updated_at": at.UTC()}})
    if err != nil {
        return fmt.Errorf("set paid: %w", err)
    }
    if res.MatchedCount == 0 {
        return ErrEntryNotFound
    }
    return nil
}

// Delete removes entry id regardless of its paid flag.
func (r *MongoEntryRepo) Delete(ctx context.Context, id string) error {
    res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
    if err != nil {
        return fmt.Errorf("delete entry: %w", err)
    }
    if res.DeletedCount == 0 {
        return ErrEntryNotFound
    }
    return nil
}

// DeleteUnpaid removes entry id only while paid is false; the filter is
// evaluated atomically by the server.
func (r *MongoEntryRepo) DeleteUnpaid(ctx context.Context, id string) (bool, error) {
    res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "paid": false})
    if err != nil {
        return false, fmt.Errorf("delete unpaid entry: %w", err)
    }
    return res.DeletedCount > 0, nil
}

func normalizeTimes(e *model.Entry) {
    e.CreatedAt = e.CreatedAt.UTC()
    e.UpdatedAt = e.UpdatedAt.UTC()
}
