package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/raffle-reservation/internal/database"
	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/queue"
	"github.com/iliyamo/raffle-reservation/internal/repository"
)

func newTestStore(t *testing.T) *repository.EntryRepo {
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
	return repository.NewEntryRepo(db)
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) EntriesChanged(context.Context) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type chanPublisher struct {
	events chan queue.EntryEvent
}

func newChanPublisher() *chanPublisher {
	return &chanPublisher{events: make(chan queue.EntryEvent, 16)}
}

func (p *chanPublisher) Publish(_ context.Context, ev queue.EntryEvent) error {
	p.events <- ev
	return nil
}

func (p *chanPublisher) next(t *testing.T) queue.EntryEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.EntryEvent{}
	}
}

// blindStore hides existing entries from FindBySlot, so commits reach the
// insert and only the unique index can reject them.
type blindStore struct {
	*repository.EntryRepo
}

func (blindStore) FindBySlot(context.Context, int) (*model.Entry, error) { return nil, nil }

// brokenStore fails every call.
type brokenStore struct{}

var errDiskGone = errors.New("disk gone")

func (brokenStore) Create(context.Context, model.Entry) error { return errDiskGone }
func (brokenStore) FindBySlot(context.Context, int) (*model.Entry, error) {
	return nil, errDiskGone
}
func (brokenStore) GetByID(context.Context, string) (model.Entry, error) {
	return model.Entry{}, errDiskGone
}
func (brokenStore) List(context.Context) ([]model.Entry, error) { return nil, errDiskGone }
func (brokenStore) SetPaid(context.Context, string, bool, time.Time) error {
	return errDiskGone
}
func (brokenStore) Delete(context.Context, string) error { return errDiskGone }
func (brokenStore) DeleteUnpaid(context.Context, string) (bool, error) {
	return false, errDiskGone
}

// lostReadStore writes normally but fails every GetByID.
type lostReadStore struct {
	*repository.EntryRepo
}

func (lostReadStore) GetByID(context.Context, string) (model.Entry, error) {
	return model.Entry{}, errDiskGone
}
