// Package service implements the raffle reservation rules: the public
// reservation flow and the administrative mutations.  Both services share
// an EntryStore, notify the live view after every committed change and
// publish lifecycle events in the background.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/clock"
	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/queue"
)

// EntryStore is the persistence contract shared by the SQL and MongoDB
// repositories.  Create must fail with repository.ErrSlotTaken when the
// slot is already held.
type EntryStore interface {
	Create(ctx context.Context, e model.Entry) error
	FindBySlot(ctx context.Context, slot int) (*model.Entry, error)
	GetByID(ctx context.Context, id string) (model.Entry, error)
	List(ctx context.Context) ([]model.Entry, error)
	SetPaid(ctx context.Context, id string, paid bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteUnpaid(ctx context.Context, id string) (bool, error)
}

// ChangeNotifier is told after every committed mutation.  Implementations
// must not block the caller.
type ChangeNotifier interface {
	EntriesChanged(ctx context.Context)
}

// EventPublisher delivers lifecycle events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.EntryEvent) error
}

// Option customizes a service.
type Option func(*deps)

// WithNotifier wires the live view.
func WithNotifier(n ChangeNotifier) Option { return func(d *deps) { d.notifier = n } }

// WithPublisher wires the event publisher.
func WithPublisher(p EventPublisher) Option { return func(d *deps) { d.events = p } }

// WithClock overrides the system clock.
func WithClock(c clock.Clock) Option { return func(d *deps) { d.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(d *deps) { d.logger = l } }

// WithIDGenerator overrides UUID generation for entry ids.
func WithIDGenerator(f func() string) Option { return func(d *deps) { d.newID = f } }

const publishTimeout = 5 * time.Second

// deps holds the collaborators shared by both services.
type deps struct {
	store    EntryStore
	notifier ChangeNotifier
	events   EventPublisher
	clock    clock.Clock
	logger   *zap.Logger
	newID    func() string
}

func newDeps(store EntryStore, opts []Option) deps {
	d := deps{
		store:  store,
		clock:  clock.NewSystem(),
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// changed notifies the live view and publishes ev.
func (d deps) changed(ctx context.Context, ev queue.EntryEvent) {
	if d.notifier != nil {
		d.notifier.EntriesChanged(ctx)
	}
	d.publish(ev)
}

// publish sends ev in the background.  The request context is not reused
// since the request may finish before the broker answers.
func (d deps) publish(ev queue.EntryEvent) {
	if d.events == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = d.clock.Now()
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := d.events.Publish(pctx, ev); err != nil {
			d.logger.Warn("event publish failed",
				zap.String("type", string(ev.Type)),
				zap.String("entry_id", ev.EntryID),
				zap.Error(err))
		}
	}()
}

func eventFor(t queue.EventType, e model.Entry, actor string) queue.EntryEvent {
	return queue.EntryEvent{
		Type:          t,
		EntryID:       e.ID,
		SlotNumber:    e.SlotNumber,
		Name:          e.Name,
		ContactNumber: e.ContactNumber,
		Paid:          e.Paid,
		Actor:         actor,
	}
}
