package repository

import (
    "context"
    "database/sql"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/raffle-reservation/internal/database"
    "github.com/iliyamo/raffle-reservation/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
    t.Helper()
    db, err := database.OpenSQLite(database.MemoryDSN)
    if err != nil {
        t.Fatalf("open sqlite: %v", err)
    }
    t.Cleanup(func() { _ = db.Close() })
    m, err := database.NewMigrator(db, "sqlite", nil)
    if err != nil {
        t.Fatalf("migrator: %v", err)
    }
    if err := m.Run(context.Background()); err != nil {
        t.Fatalf("migrate: %v", err)
    }
    return db
}

func newEntry(id string, slot int, at time.Time) model.Entry {
    return model.Entry{
        ID:            id,
        SlotNumber:    slot,
        Name:          "Ana",
        ContactNumber: "11999998888",
        CreatedAt:     at,
        UpdatedAt:     at,
    }
}

func TestEntryRepoCreateAndFind(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

    if err := repo.Create(ctx, newEntry("e1", 5, at)); err != nil {
        t.Fatalf("Create: %v", err)
    }

    got, err := repo.FindBySlot(ctx, 5)
    if err != nil || got == nil {
        t.Fatalf("FindBySlot(5) = %v, %v", got, err)
    }
    if got.ID != "e1" || got.Name != "Ana" || got.ContactNumber != "11999998888" || got.Paid {
        t.Fatalf("entry = %+v", got)
    }
    if !got.CreatedAt.Equal(at) {
        t.Fatalf("CreatedAt = %s, want %s", got.CreatedAt, at)
    }

    free, err := repo.FindBySlot(ctx, 6)
    if err != nil || free != nil {
        t.Fatalf("FindBySlot(6) = %v, %v; want nil, nil", free, err)
    }

    if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrEntryNotFound) {
        t.Fatalf("GetByID(missing) err = %v", err)
    }
}

func TestEntryRepoUniqueSlot(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    now := time.Now().UTC()

    if err := repo.Create(ctx, newEntry("e1", 7, now)); err != nil {
        t.Fatalf("Create: %v", err)
    }
    err := repo.Create(ctx, newEntry("e2", 7, now))
    if !errors.Is(err, ErrSlotTaken) {
        t.Fatalf("second Create err = %v, want ErrSlotTaken", err)
    }
    entries, _ := repo.List(ctx)
    if len(entries) != 1 {
        t.Fatalf("len(entries) = %d, want 1", len(entries))
    }
}

func TestEntryRepoConcurrentInsertsOneWins(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    now := time.Now().UTC()

    const workers = 8
    var wg sync.WaitGroup
    errs := make([]error, workers)
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            errs[i] = repo.Create(ctx, newEntry(string(rune('a'+i)), 3, now))
        }(i)
    }
    wg.Wait()

    ok := 0
    for _, err := range errs {
        switch {
        case err == nil:
            ok++
        case errors.Is(err, ErrSlotTaken):
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    if ok != 1 {
        t.Fatalf("%d inserts succeeded, want exactly 1", ok)
    }
}

func TestEntryRepoListOrder(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

    _ = repo.Create(ctx, newEntry("late", 1, base.Add(2*time.Hour)))
    _ = repo.Create(ctx, newEntry("early", 9, base))
    _ = repo.Create(ctx, newEntry("mid", 4, base.Add(time.Hour)))

    entries, err := repo.List(ctx)
    if err != nil {
        t.Fatalf("List: %v", err)
    }
    var ids []string
    for _, e := range entries {
        ids = append(ids, e.ID)
    }
    want := []string{"early", "mid", "late"}
    for i := range want {
        if ids[i] != want[i] {
            t.Fatalf("order = %v, want %v", ids, want)
        }
    }
}

func TestEntryRepoSetPaidAndDelete(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    now := time.Now().UTC()
    _ = repo.Create(ctx, newEntry("e1", 2, now))

    if err := repo.SetPaid(ctx, "e1", true, now); err != nil {
        t.Fatalf("SetPaid: %v", err)
    }
    // Setting the same value again still matches the row.
    if err := repo.SetPaid(ctx, "e1", true, now); err != nil {
        t.Fatalf("SetPaid again: %v", err)
    }
    e, _ := repo.GetByID(ctx, "e1")
    if !e.Paid {
        t.Fatal("entry should be paid")
    }
    if err := repo.SetPaid(ctx, "nope", true, now); !errors.Is(err, ErrEntryNotFound) {
        t.Fatalf("SetPaid(nope) err = %v", err)
    }

    removed, err := repo.DeleteUnpaid(ctx, "e1")
    if err != nil || removed {
        t.Fatalf("DeleteUnpaid on paid entry = %v, %v; want false, nil", removed, err)
    }

    if err := repo.Delete(ctx, "e1"); err != nil {
        t.Fatalf("Delete: %v", err)
    }
    if err := repo.Delete(ctx, "e1"); !errors.Is(err, ErrEntryNotFound) {
        t.Fatalf("second Delete err = %v", err)
    }
}

func TestEntryRepoDeleteUnpaid(t *testing.T) {
    repo := NewEntryRepo(openTestDB(t))
    ctx := context.Background()
    _ = repo.Create(ctx, newEntry("e1", 2, time.Now().UTC()))

    removed, err := repo.DeleteUnpaid(ctx, "e1")
    if err != nil || !removed {
        t.Fatalf("DeleteUnpaid = %v, %v; want true, nil", removed, err)
    }
    if got, _ := repo.FindBySlot(ctx, 2); got != nil {
        t.Fatal("slot 2 should be free again")
    }
}
