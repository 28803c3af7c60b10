package model

// Slot is one numbered raffle ticket as seen by viewers.  A slot is
// taken exactly when an entry references its number; Entry is nil for
// free slots.
type Slot struct {
    Number int    `json:"number"`
    Taken  bool   `json:"taken"`
    Entry  *Entry `json:"entry,omitempty"`
}

// SlotState collapses a slot into the three states shown on the grid.
type SlotState string

const (
    SlotFree     SlotState = "free"
    SlotReserved SlotState = "reserved" // taken, awaiting payment
    SlotPaid     SlotState = "paid"
)

// State reports the grid state of s.
func (s Slot) State() SlotState {
    switch {
    case !s.Taken || s.Entry == nil:
        return SlotFree
    case s.Entry.Paid:
        return SlotPaid
    default:
        return SlotReserved
    }
}
