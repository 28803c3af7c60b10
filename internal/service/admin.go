package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/queue"
	"github.com/iliyamo/raffle-reservation/internal/repository"
)

// AdminService holds the operations behind the admin session: payment
// confirmation, override deletion, search, the dashboard and the draw.
type AdminService struct {
	deps
	totalSlots int
	priceCents int64
	intn       func(n int) (int, error)
}

// NewAdminService returns an admin service for a raffle of totalSlots slots
// sold at priceCents each.
func NewAdminService(store EntryStore, totalSlots int, priceCents int64, opts ...Option) *AdminService {
	return &AdminService{
		deps:       newDeps(store, opts),
		totalSlots: totalSlots,
		priceCents: priceCents,
		intn:       cryptoIntN,
	}
}

// SetPaid overwrites the paid flag of entry id.  There is no rule gate;
// an admin may also un-mark a payment.
func (s *AdminService) SetPaid(ctx context.Context, actor, id string, paid bool) (model.Entry, error) {
	if id == "" {
		return model.Entry{}, invalid("id", "required")
	}
	now := s.clock.Now()
	if err := s.store.SetPaid(ctx, id, paid, now); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.Entry{}, ErrNotFound
		}
		return model.Entry{}, unavailable("set paid", err)
	}
	evType := queue.EventUnpaid
	if paid {
		evType = queue.EventPaid
	}
	s.logger.Info("paid flag set", zap.String("entry_id", id), zap.Bool("paid", paid), zap.String("actor", actor))

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		// the flag already changed; viewers still need the new grid
		s.changed(ctx, queue.EntryEvent{Type: evType, EntryID: id, Paid: paid, Actor: actor})
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.Entry{}, ErrNotFound
		}
		return model.Entry{}, unavailable("set paid", err)
	}
	s.changed(ctx, eventFor(evType, e, actor))
	return e, nil
}

// DeleteRecord removes entry id even when it is paid.
func (s *AdminService) DeleteRecord(ctx context.Context, actor, id string) error {
	if id == "" {
		return invalid("id", "required")
	}
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrNotFound
		}
		return unavailable("delete entry", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrNotFound
		}
		return unavailable("delete entry", err)
	}
	s.logger.Info("entry deleted", zap.String("entry_id", id), zap.Int("slot", e.SlotNumber), zap.String("actor", actor))
	s.changed(ctx, eventFor(queue.EventDeleted, e, actor))
	return nil
}

// Search lists entries matching f.
func (s *AdminService) Search(ctx context.Context, f EntryFilter) ([]model.Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, unavailable("search entries", err)
	}
	return FilterEntries(entries, f), nil
}

// Stats computes the dashboard over every entry.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, unavailable("stats", err)
	}
	return ComputeStats(entries, s.totalSlots, s.priceCents), nil
}

// Draw picks one paid entry uniformly at random.
func (s *AdminService) Draw(ctx context.Context, actor string) (model.Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return model.Entry{}, unavailable("draw", err)
	}
	winner, err := PickWinner(entries, s.intn)
	if err != nil {
		return model.Entry{}, err
	}
	s.logger.Info("winner drawn", zap.String("entry_id", winner.ID), zap.Int("slot", winner.SlotNumber), zap.String("actor", actor))
	s.publish(eventFor(queue.EventDrawn, winner, actor))
	return winner, nil
}

// PickWinner returns a paid entry chosen by intn, which must return a
// uniform value in [0, n).
func PickWinner(entries []model.Entry, intn func(n int) (int, error)) (model.Entry, error) {
	paid := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Paid {
			paid = append(paid, e)
		}
	}
	if len(paid) == 0 {
		return model.Entry{}, ErrNoPaidEntries
	}
	i, err := intn(len(paid))
	if err != nil {
		return model.Entry{}, err
	}
	if i < 0 || i >= len(paid) {
		return model.Entry{}, errors.New("winner index out of range")
	}
	return paid[i], nil
}

func cryptoIntN(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
