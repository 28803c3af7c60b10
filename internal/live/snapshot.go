package live

import (
	"strings"
	"time"

	"github.com/iliyamo/raffle-reservation/internal/ledger"
	"github.com/iliyamo/raffle-reservation/internal/model"
)

// SlotView is the public face of a slot.  Viewers see the holder's first
// name only; contact numbers never leave the admin API.
type SlotView struct {
	Number    int             `json:"number"`
	State     model.SlotState `json:"state"`
	Taken     bool            `json:"taken"`
	Paid      bool            `json:"paid"`
	FirstName string          `json:"first_name,omitempty"`
}

// Snapshot is a complete grid.  Each snapshot replaces the previous one;
// Version increases by one per rebuild so viewers can discard stale data.
type Snapshot struct {
	Version     uint64         `json:"version"`
	Total       int            `json:"total"`
	Summary     ledger.Summary `json:"summary"`
	Slots       []SlotView     `json:"slots"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// NewSnapshot projects a rebuilt grid into its public form.
func NewSnapshot(version uint64, slots []model.Slot, at time.Time) Snapshot {
	views := make([]SlotView, len(slots))
	for i, s := range slots {
		v := SlotView{Number: s.Number, State: s.State(), Taken: s.Taken}
		if s.Entry != nil {
			v.Paid = s.Entry.Paid
			v.FirstName = firstName(s.Entry.Name)
		}
		views[i] = v
	}
	return Snapshot{
		Version:     version,
		Total:       len(slots),
		Summary:     ledger.Summarize(slots),
		Slots:       views,
		GeneratedAt: at.UTC(),
	}
}

// Slot returns the view of slot n, or false when n is out of range.
func (s Snapshot) Slot(n int) (SlotView, bool) {
	if n < 1 || n > len(s.Slots) {
		return SlotView{}, false
	}
	return s.Slots[n-1], true
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}
