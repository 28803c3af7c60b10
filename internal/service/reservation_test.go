package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/raffle-reservation/internal/clock"
	"github.com/iliyamo/raffle-reservation/internal/ledger"
	"github.com/iliyamo/raffle-reservation/internal/model"
	"github.com/iliyamo/raffle-reservation/internal/queue"
)

func TestCommitThenRequestIsReserved(t *testing.T) {
	svc := NewReservationService(newTestStore(t), 10)
	ctx := context.Background()

	if err := svc.RequestSlot(ctx, 5); err != nil {
		t.Fatalf("RequestSlot before commit: %v", err)
	}
	if _, err := svc.CommitReservation(ctx, 5, "Ana", "11999998888"); err != nil {
		t.Fatalf("CommitReservation: %v", err)
	}
	if err := svc.RequestSlot(ctx, 5); !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("RequestSlot after commit err = %v, want ErrAlreadyReserved", err)
	}
}

func TestCommitValidation(t *testing.T) {
	svc := NewReservationService(newTestStore(t), 10)
	tests := []struct {
		name    string
		slot    int
		who     string
		contact string
	}{
		{"slot zero", 0, "Ana", "11999998888"},
		{"slot above total", 11, "Ana", "11999998888"},
		{"empty name", 1, "", "11999998888"},
		{"blank name", 1, "   ", "11999998888"},
		{"empty contact", 1, "Ana", ""},
		{"contact without digits", 1, "Ana", "(--) ---"},
		{"contact too short", 1, "Ana", "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CommitReservation(context.Background(), tt.slot, tt.who, tt.contact)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field == "" {
				t.Fatalf("err = %#v, want *ValidationError with a field", err)
			}
		})
	}
}

func TestCommitNormalizesAndStamps(t *testing.T) {
	at := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	store := newTestStore(t)
	svc := NewReservationService(store, 10,
		WithClock(clock.NewFixed(at)),
		WithIDGenerator(func() string { return "fixed-id" }))

	e, err := svc.CommitReservation(context.Background(), 3, "  Ana  ", "(11) 99999-8888")
	if err != nil {
		t.Fatalf("CommitReservation: %v", err)
	}
	if e.ID != "fixed-id" || e.Name != "Ana" || e.ContactNumber != "11999998888" || e.Paid {
		t.Fatalf("entry = %+v", e)
	}
	stored, err := store.GetByID(context.Background(), "fixed-id")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.CreatedAt.Equal(at) {
		t.Fatalf("CreatedAt = %s, want %s", stored.CreatedAt, at)
	}
}

func TestRaffleScenario(t *testing.T) {
	store := newTestStore(t)
	reservations := NewReservationService(store, 10)
	admin := NewAdminService(store, 10, 1500)
	ctx := context.Background()

	e, err := reservations.CommitReservation(ctx, 5, "Ana", "11999998888")
	if err != nil {
		t.Fatalf("CommitReservation: %v", err)
	}

	grid := func() []model.Slot {
		entries, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		return ledger.Rebuild(10, entries)
	}

	slot := grid()[4]
	if !slot.Taken || slot.Entry.Paid {
		t.Fatalf("slot 5 after commit = %+v, want taken and unpaid", slot)
	}

	if _, err := admin.SetPaid(ctx, "admin", e.ID, true); err != nil {
		t.Fatalf("SetPaid: %v", err)
	}
	slot = grid()[4]
	if !slot.Taken || !slot.Entry.Paid {
		t.Fatalf("slot 5 after payment = %+v, want paid", slot)
	}

	if _, err := reservations.CommitReservation(ctx, 5, "Bia", "11888887777"); !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("second commit err = %v, want ErrAlreadyReserved", err)
	}
}

func TestConcurrentCommitsExactlyOneWins(t *testing.T) {
	svc := NewReservationService(newTestStore(t), 10)
	ctx := context.Background()

	const clients = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, clients)
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CommitReservation(ctx, 7, "Client", "1198765432"+string(rune('0'+i)))
		}(i)
	}
	close(start)
	wg.Wait()

	wins, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyReserved):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || lost != 1 {
		t.Fatalf("wins=%d lost=%d, want 1 and 1", wins, lost)
	}
}

func TestCommitUniqueIndexIsFinalGuard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := NewReservationService(store, 10).CommitReservation(ctx, 7, "Ana", "11999998888"); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Both availability checks pass, so only the insert can refuse.
	blind := NewReservationService(blindStore{store}, 10)
	if _, err := blind.CommitReservation(ctx, 7, "Bia", "11888887777"); !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("err = %v, want ErrAlreadyReserved", err)
	}
	entries, _ := store.List(ctx)
	if len(entries) != 1 || entries[0].Name != "Ana" {
		t.Fatalf("entries = %+v, want only Ana", entries)
	}
}

func TestWithdrawReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("mismatched credentials never delete", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewReservationService(store, 10)
		_, _ = svc.CommitReservation(ctx, 2, "Ana", "11999998888")

		for _, c := range []struct{ name, contact string }{
			{"ana", "11999998888"},
			{"Ana", "11999998887"},
			{"Bia", "11888887777"},
			{"", ""},
		} {
			if err := svc.WithdrawReservation(ctx, 2, c.name, c.contact); !errors.Is(err, ErrNotAuthorized) {
				t.Fatalf("withdraw(%q, %q) err = %v, want ErrNotAuthorized", c.name, c.contact, err)
			}
		}
		if e, _ := store.FindBySlot(ctx, 2); e == nil {
			t.Fatal("entry was deleted on mismatch")
		}
	})

	t.Run("paid entry is refused even with matching credentials", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewReservationService(store, 10)
		admin := NewAdminService(store, 10, 1500)
		e, _ := svc.CommitReservation(ctx, 2, "Ana", "11999998888")
		_, _ = admin.SetPaid(ctx, "admin", e.ID, true)

		for _, who := range []string{"Ana", "Bia"} {
			if err := svc.WithdrawReservation(ctx, 2, who, "11999998888"); !errors.Is(err, ErrCannotModifyPaid) {
				t.Fatalf("withdraw as %s err = %v, want ErrCannotModifyPaid", who, err)
			}
		}
	})

	t.Run("matching credentials free the slot", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewReservationService(store, 10)
		_, _ = svc.CommitReservation(ctx, 2, "Ana", "11999998888")

		if err := svc.WithdrawReservation(ctx, 2, " Ana ", "(11) 99999-8888"); err != nil {
			t.Fatalf("withdraw: %v", err)
		}
		if err := svc.RequestSlot(ctx, 2); err != nil {
			t.Fatalf("slot should be free again: %v", err)
		}
	})

	t.Run("free slot", func(t *testing.T) {
		svc := NewReservationService(newTestStore(t), 10)
		if err := svc.WithdrawReservation(ctx, 4, "Ana", "11999998888"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

// paidBetweenStore reports the entry unpaid on lookup and paid by the time
// the conditional delete runs.
type paidBetweenStore struct {
	blindStore
	entry model.Entry
}

func (s paidBetweenStore) FindBySlot(context.Context, int) (*model.Entry, error) {
	e := s.entry
	return &e, nil
}

func (s paidBetweenStore) DeleteUnpaid(context.Context, string) (bool, error) { return false, nil }

func (s paidBetweenStore) GetByID(context.Context, string) (model.Entry, error) {
	e := s.entry
	e.Paid = true
	return e, nil
}

func TestWithdrawLosesToConcurrentPayment(t *testing.T) {
	store := paidBetweenStore{entry: model.Entry{ID: "e1", SlotNumber: 2, Name: "Ana", ContactNumber: "11999998888"}}
	svc := NewReservationService(store, 10)
	err := svc.WithdrawReservation(context.Background(), 2, "Ana", "11999998888")
	if !errors.Is(err, ErrCannotModifyPaid) {
		t.Fatalf("err = %v, want ErrCannotModifyPaid", err)
	}
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	svc := NewReservationService(brokenStore{}, 10)
	ctx := context.Background()

	if err := svc.RequestSlot(ctx, 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("RequestSlot err = %v", err)
	}
	if _, err := svc.CommitReservation(ctx, 1, "Ana", "11999998888"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("CommitReservation err = %v", err)
	}
	if err := svc.WithdrawReservation(ctx, 1, "Ana", "11999998888"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("WithdrawReservation err = %v", err)
	}
}

func TestCommitNotifiesAndPublishes(t *testing.T) {
	notifier := &countingNotifier{}
	pub := newChanPublisher()
	svc := NewReservationService(newTestStore(t), 10, WithNotifier(notifier), WithPublisher(pub))
	ctx := context.Background()

	e, err := svc.CommitReservation(ctx, 9, "Ana", "11999998888")
	if err != nil {
		t.Fatalf("CommitReservation: %v", err)
	}
	ev := pub.next(t)
	if ev.Type != queue.EventReserved || ev.EntryID != e.ID || ev.SlotNumber != 9 || ev.Actor != queue.ActorPublic {
		t.Fatalf("event = %+v", ev)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatal("event time not set")
	}

	if err := svc.WithdrawReservation(ctx, 9, "Ana", "11999998888"); err != nil {
		t.Fatalf("WithdrawReservation: %v", err)
	}
	if ev := pub.next(t); ev.Type != queue.EventWithdrawn {
		t.Fatalf("event type = %s, want withdrawn", ev.Type)
	}
	if got := notifier.count(); got != 2 {
		t.Fatalf("notifier called %d times, want 2", got)
	}

	// A rejected commit changes nothing and notifies nobody.
	_, _ = svc.CommitReservation(ctx, 0, "Ana", "11999998888")
	if got := notifier.count(); got != 2 {
		t.Fatalf("notifier called %d times after a rejected commit", got)
	}
}

func TestNormalizeContactAndName(t *testing.T) {
	if got := NormalizeContact("+55 (11) 99999-8888"); got != "5511999998888" {
		t.Fatalf("NormalizeContact = %q", got)
	}
	// Precomposed vs combining acute accent.
	if NormalizeName("Jos\u00e9") != NormalizeName("Jose\u0301") {
		t.Fatal("NFC normalization should make both spellings equal")
	}
}
