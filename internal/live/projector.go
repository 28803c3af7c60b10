package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/clock"
	"github.com/iliyamo/raffle-reservation/internal/ledger"
	"github.com/iliyamo/raffle-reservation/internal/model"
)

// EntryLister is the read side of the entry store.
type EntryLister interface {
	List(ctx context.Context) ([]model.Entry, error)
}

// Announcer tells other server instances that entries changed.
type Announcer interface {
	Announce(ctx context.Context) error
}

// Projector keeps the current snapshot and pushes a fresh one to the hub
// after every change.  Change signals coalesce: many writes arriving during
// one rebuild cause a single follow-up rebuild, and writers never wait.
type Projector struct {
	store  EntryLister
	total  int
	hub    *Hub
	clock  clock.Clock
	logger *zap.Logger

	trigger chan struct{}

	refreshMu sync.Mutex // one rebuild at a time, list through broadcast
	mu        sync.RWMutex
	version   uint64
	current   Snapshot
	encoded   []byte

	announcer Announcer
}

// NewProjector returns a projector over a grid of total slots.
func NewProjector(store EntryLister, total int, hub *Hub, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		store:   store,
		total:   total,
		hub:     hub,
		clock:   clock.NewSystem(),
		logger:  logger.Named("projector"),
		trigger: make(chan struct{}, 1),
	}
}

// SetAnnouncer makes EntriesChanged also notify other instances.
func (p *Projector) SetAnnouncer(a Announcer) { p.announcer = a }

// EntriesChanged schedules a rebuild.  It never blocks on the rebuild.
func (p *Projector) EntriesChanged(ctx context.Context) {
	p.Signal()
	if p.announcer != nil {
		if err := p.announcer.Announce(ctx); err != nil {
			p.logger.Warn("announce change failed", zap.Error(err))
		}
	}
}

// Signal schedules a local rebuild without announcing it.
func (p *Projector) Signal() {
	select {
	case p.trigger <- struct{}{}:
	default: // a rebuild is already pending
	}
}

// Run rebuilds once, then after every signal, until ctx is cancelled.
func (p *Projector) Run(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Error("initial rebuild failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.trigger:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Error("rebuild failed", zap.Error(err))
			}
		}
	}
}

// Refresh reads every entry, rebuilds the grid, stores the snapshot and
// broadcasts it.  Calls are serialized so versions reach viewers in order.
func (p *Projector) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	entries, err := p.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	slots := ledger.Rebuild(p.total, entries)

	p.mu.Lock()
	p.version++
	snap := NewSnapshot(p.version, slots, p.clock.Now())
	encoded, err := json.Marshal(snap)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	p.current = snap
	p.encoded = encoded
	p.mu.Unlock()

	if p.hub != nil {
		p.hub.Broadcast(encoded)
	}
	return nil
}

// Current returns the latest snapshot.  The boolean is false until the
// first rebuild completes.
func (p *Projector) Current() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.version > 0
}

// CurrentJSON returns the encoded latest snapshot, or nil before the first
// rebuild.
func (p *Projector) CurrentJSON() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.encoded
}
