package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func TestHandleMessageAppendsAuditLine(t *testing.T) {
    dir := t.TempDir()
    c := NewConsumer("amqp://unused", filepath.Join(dir, "logs"), nil)

    ev := EntryEvent{
        Type:          EventReserved,
        EntryID:       "e1",
        SlotNumber:    5,
        Name:          "Ana",
        ContactNumber: "11999998888",
        Actor:         ActorPublic,
        OccurredAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
    }
    body, _ := json.Marshal(ev)
    if err := c.HandleMessage(body); err != nil {
        t.Fatalf("HandleMessage: %v", err)
    }
    ev.Type = EventPaid
    ev.Paid = true
    body, _ = json.Marshal(ev)
    if err := c.HandleMessage(body); err != nil {
        t.Fatalf("HandleMessage: %v", err)
    }

    data, err := os.ReadFile(filepath.Join(dir, "logs", AuditLogFile))
    if err != nil {
        t.Fatalf("read log: %v", err)
    }
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    if len(lines) != 2 {
        t.Fatalf("got %d lines, want 2:\n%s", len(lines), data)
    }
    want := `[2024-03-01T12:00:00Z] entry.reserved | entry_id=e1 | slot=5 | name="Ana" | contact=*******8888 | paid=false | actor=public`
    if lines[0] != want {
        t.Fatalf("line = %q\nwant   %q", lines[0], want)
    }
    if !strings.Contains(lines[1], "entry.paid") || !strings.Contains(lines[1], "paid=true") {
        t.Fatalf("second line = %q", lines[1])
    }
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
    c := NewConsumer("amqp://unused", t.TempDir(), nil)
    for _, body := range []string{"not json", `{"entry_id":"x"}`} {
        if err := c.HandleMessage([]byte(body)); err == nil {
            t.Fatalf("HandleMessage(%q) should fail", body)
        }
    }
}

func TestMaskContact(t *testing.T) {
    tests := map[string]string{
        "":            "",
        "1234":        "1234",
        "12345":       "*2345",
        "11999998888": "*******8888",
    }
    for in, want := range tests {
        if got := MaskContact(in); got != want {
            t.Errorf("MaskContact(%q) = %q, want %q", in, got, want)
        }
    }
}
