// Package ledger derives the raffle slot grid from the committed entries.
// The grid is never stored; it is rebuilt from scratch whenever the set
// of entries changes.
package ledger

import "github.com/iliyamo/raffle-reservation/internal/model"

// Rebuild maps slot numbers 1..total to their holder.  Entries whose
// slot number falls outside [1, total] are ignored.  When two entries
// claim the same slot the first one wins; the store's unique index keeps
// that from happening in practice.
func Rebuild(total int, entries []model.Entry) []model.Slot {
    if total < 0 {
        total = 0
    }
    slots := make([]model.Slot, total)
    for i := range slots {
        slots[i] = model.Slot{Number: i + 1}
    }
    for i := range entries {
        n := entries[i].SlotNumber
        if n < 1 || n > total || slots[n-1].Taken {
            continue
        }
        e := entries[i]
        slots[n-1].Taken = true
        slots[n-1].Entry = &e
    }
    return slots
}

// Summary counts slots per grid state.
type Summary struct {
    Total    int `json:"total"`
    Free     int `json:"free"`
    Reserved int `json:"reserved"`
    Paid     int `json:"paid"`
}

// Summarize tallies a rebuilt grid.
func Summarize(slots []model.Slot) Summary {
    s := Summary{Total: len(slots)}
    for _, slot := range slots {
        switch slot.State() {
        case model.SlotPaid:
            s.Paid++
        case model.SlotReserved:
            s.Reserved++
        default:
            s.Free++
        }
    }
    return s
}

