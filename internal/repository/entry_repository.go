package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/raffle-reservation/internal/model"
)

// EntryRepo stores raffle entries in MySQL or SQLite.  The statements use
// only portable SQL and `?` placeholders so one implementation serves both
// drivers.  All timestamps are written and read in UTC.
type EntryRepo struct {
    db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

const entryColumns = `id, slot_number, name, contact_number, paid, created_at, updated_at`

// Create inserts e.  A collision on the slot_number unique index returns
// ErrSlotTaken; no row is written in that case.
func (r *EntryRepo) Create(ctx context.Context, e model.Entry) error {
    const q = `INSERT INTO entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        e.ID, e.SlotNumber, e.Name, e.ContactNumber, e.Paid,
        e.CreatedAt.UTC(), e.UpdatedAt.UTC())
    if err != nil {
        if isDuplicateKey(err) {
            return ErrSlotTaken
        }
        return fmt.Errorf("insert entry: %w", err)
    }
    return nil
}

// FindBySlot returns the entry holding slot, or nil when the slot is free.
func (r *EntryRepo) FindBySlot(ctx context.Context, slot int) (*model.Entry, error) {
    const q = `SELECT ` + entryColumns + ` FROM entries WHERE slot_number = ? LIMIT 1`
    e, err := scanEntry(r.db.QueryRowContext(ctx, q, slot))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("find entry by slot: %w", err)
    }
    return &e, nil
}

// GetByID returns the entry with the given id or ErrEntryNotFound.
func (r *EntryRepo) GetByID(ctx context.Context, id string) (model.Entry, error) {
    const q = `SELECT ` + entryColumns + ` FROM entries WHERE id = ? LIMIT 1`
    e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return model.Entry{}, ErrEntryNotFound
    }
    if err != nil {
        return model.Entry{}, fmt.Errorf("get entry: %w", err)
    }
    return e, nil
}

// List returns every entry ordered by creation time, oldest first.
func (r *EntryRepo) List(ctx context.Context) ([]model.Entry, error) {
    const q = `SELECT ` + entryColumns + ` FROM entries ORDER BY created_at ASC, slot_number ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, fmt.Errorf("list entries: %w", err)
    }
    defer rows.Close()

    entries := make([]model.Entry, 0)
    for rows.Next() {
        e, err := scanEntry(rows)
        if err != nil {
            return nil, fmt.Errorf("scan entry: %w", err)
        }
        entries = append(entries, e)
    }
    if err := rows.Err(); err != nil {
        return nil, fmt.Errorf("list entries: %w", err)
    }
    return entries, nil
}

// SetPaid overwrites the paid flag of entry id.
func (r *EntryRepo) SetPaid(ctx context.Context, id string, paid bool, at time.Time) error {
    const q = `UPDATE entries SET paid = ?, updated_at = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, paid, at.UTC(), id)
    if err != nil {
        return fmt.Errorf("set paid: %w", err)
    }
    return requireOneRow(res, ErrEntryNotFound)
}

// Delete removes entry id regardless of its paid flag.
func (r *EntryRepo) Delete(ctx context.Context, id string) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
    if err != nil {
        return fmt.Errorf("delete entry: %w", err)
    }
    return requireOneRow(res, ErrEntryNotFound)
}

// DeleteUnpaid removes entry id only while it is still unpaid.  The
// condition is evaluated by the database, so a concurrent SetPaid either
// lands first (nothing is deleted) or after (nothing is left to mark).
// The boolean reports whether a row was removed.
func (r *EntryRepo) DeleteUnpaid(ctx context.Context, id string) (bool, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND paid = ?`, id, false)
    if err != nil {
        return false, fmt.Errorf("delete unpaid entry: %w", err)
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, fmt.Errorf("rows affected: %w", err)
    }
    return n > 0, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...any) error
}

func scanEntry(s rowScanner) (model.Entry, error) {
    var e model.Entry
    err := s.Scan(&e.ID, &e.SlotNumber, &e.Name, &e.ContactNumber, &e.Paid, &e.CreatedAt, &e.UpdatedAt)
    if err != nil {
        return model.Entry{}, err
    }
    e.CreatedAt = e.CreatedAt.UTC()
    e.UpdatedAt = e.UpdatedAt.UTC()
    return e, nil
}

func requireOneRow(res sql.Result, notFound error) error {
    n, err := res.RowsAffected()
    if err != nil {
        return fmt.Errorf("rows affected: %w", err)
    }
    if n == 0 {
        return notFound
    }
    return nil
}
