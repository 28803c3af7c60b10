// Package queue defines the entry lifecycle events exchanged over RabbitMQ,
// the publisher used by the services and the consumer that appends them to
// the audit log.
package queue

import "time"

// EntriesQueue is the durable queue carrying EntryEvent messages.
const EntriesQueue = "raffle.entries"

// EventType names a lifecycle transition of a raffle entry.
type EventType string

const (
    EventReserved  EventType = "entry.reserved"  // public commit
    EventWithdrawn EventType = "entry.withdrawn" // requester removed an unpaid entry
    EventPaid      EventType = "entry.paid"
    EventUnpaid    EventType = "entry.unpaid"
    EventDeleted   EventType = "entry.deleted" // administrative override
    EventDrawn     EventType = "raffle.drawn"
)

// EntryEvent is published after every committed mutation.  It carries
// enough of the entry for the audit log without a store lookup.
type EntryEvent struct {
    Type          EventType `json:"type"`
    EntryID       string    `json:"entry_id"`
    SlotNumber    int       `json:"slot_number"`
    Name          string    `json:"name"`
    ContactNumber string    `json:"contact_number"`
    Paid          bool      `json:"paid"`
    Actor         string    `json:"actor"` // "public" or the admin id
    OccurredAt    time.Time `json:"occurred_at"`
}

// ActorPublic marks events triggered by anonymous visitors.
const ActorPublic = "public"
