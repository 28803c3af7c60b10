package model

import "time"

// Entry is a committed raffle reservation: one contact holding one slot.
// Entries are the only persisted raffle state; slots are derived from them.
//
// Fields:
//  ID            – server generated UUID.
//  SlotNumber    – slot held by this entry, unique across entries.
//  Name          – participant name, trimmed and NFC normalized.
//  ContactNumber – phone number with every non-digit removed.
//  Paid          – set by the administrator once payment is confirmed.
//  CreatedAt     – commit time assigned by the server (UTC).
//  UpdatedAt     – last paid flip (UTC).
type Entry struct {
    ID            string    `json:"id" bson:"_id"`                        // entries.id
    SlotNumber    int       `json:"slot_number" bson:"slot_number"`       // entries.slot_number
    Name          string    `json:"name" bson:"name"`                     // entries.name
    ContactNumber string    `json:"contact_number" bson:"contact_number"` // entries.contact_number
    Paid          bool      `json:"paid" bson:"paid"`                     // entries.paid
    CreatedAt     time.Time `json:"created_at" bson:"created_at"`         // entries.created_at
    UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`         // entries.updated_at
}

// StatusLabel returns the payment label used by admin search ("paid" or
// "unpaid").
func (e Entry) StatusLabel() string {
    if e.Paid {
        return "paid"
    }
    return "unpaid"
}
