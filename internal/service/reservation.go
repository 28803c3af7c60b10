package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/queue"
	"github.com/iliyamo/raffle-reservation/internal/repository"
)

// ReservationService runs the public two-step flow: check a slot, then
// commit name and contact for it.  It also lets the original requester
// withdraw an unpaid reservation.
type ReservationService struct {
	deps
	totalSlots int
}

// NewReservationService returns a service for a raffle of totalSlots slots.
func NewReservationService(store EntryStore, totalSlots int, opts ...Option) *ReservationService {
	return &ReservationService{deps: newDeps(store, opts), totalSlots: totalSlots}
}

// TotalSlots reports N.
func (s *ReservationService) TotalSlots() int { return s.totalSlots }

func (s *ReservationService) checkRange(slot int) error {
	if slot < 1 || slot > s.totalSlots {
		return invalid("slot_number", "out of range")
	}
	return nil
}

// RequestSlot reports whether slot can still be picked.  It never writes;
// a nil error is only a hint since another client may commit first.
func (s *ReservationService) RequestSlot(ctx context.Context, slot int) error {
	if err := s.checkRange(slot); err != nil {
		return err
	}
	holder, err := s.store.FindBySlot(ctx, slot)
	if err != nil {
		return unavailable("request slot", err)
	}
	if holder != nil {
		return ErrAlreadyReserved
	}
	return nil
}

// CommitReservation validates the input, re-checks the slot and inserts a
// new unpaid entry.  The store's unique index on slot_number decides
// concurrent commits: the loser receives ErrAlreadyReserved and nothing is
// written on its behalf.
func (s *ReservationService) CommitReservation(ctx context.Context, slot int, name, contact string) (model.Entry, error) {
	if err := s.checkRange(slot); err != nil {
		return model.Entry{}, err
	}
	name = NormalizeName(name)
	if err := validateName(name); err != nil {
		return model.Entry{}, err
	}
	contact = NormalizeContact(contact)
	if err := validateContact(contact); err != nil {
		return model.Entry{}, err
	}

	holder, err := s.store.FindBySlot(ctx, slot)
	if err != nil {
		return model.Entry{}, unavailable("commit reservation", err)
	}
	if holder != nil {
		return model.Entry{}, ErrAlreadyReserved
	}

	now := s.clock.Now()
	e := model.Entry{
		ID:            s.newID(),
		SlotNumber:    slot,
		Name:          name,
		ContactNumber: contact,
		Paid:          false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.logger.Info("slot race lost", zap.Int("slot", slot))
			return model.Entry{}, ErrAlreadyReserved
		}
		return model.Entry{}, unavailable("commit reservation", err)
	}

	s.logger.Info("reservation committed", zap.String("entry_id", e.ID), zap.Int("slot", slot))
	s.changed(ctx, eventFor(queue.EventReserved, e, queue.ActorPublic))
	return e, nil
}

// WithdrawReservation deletes the unpaid entry on slot when name and
// contact match what was committed.  A paid entry is refused before the
// credentials are even compared.
func (s *ReservationService) WithdrawReservation(ctx context.Context, slot int, name, contact string) error {
	if err := s.checkRange(slot); err != nil {
		return err
	}
	holder, err := s.store.FindBySlot(ctx, slot)
	if err != nil {
		return unavailable("withdraw reservation", err)
	}
	if holder == nil {
		return ErrNotFound
	}
	if holder.Paid {
		return ErrCannotModifyPaid
	}
	if holder.Name != NormalizeName(name) || holder.ContactNumber != NormalizeContact(contact) {
		return ErrNotAuthorized
	}

	removed, err := s.store.DeleteUnpaid(ctx, holder.ID)
	if err != nil {
		return unavailable("withdraw reservation", err)
	}
	if !removed {
		// Marked paid (or deleted by an admin) after the lookup.
		if _, err := s.store.GetByID(ctx, holder.ID); errors.Is(err, repository.ErrEntryNotFound) {
			return ErrNotFound
		}
		return ErrCannotModifyPaid
	}

	s.logger.Info("reservation withdrawn", zap.String("entry_id", holder.ID), zap.Int("slot", slot))
	s.changed(ctx, eventFor(queue.EventWithdrawn, *holder, queue.ActorPublic))
	return nil
}
