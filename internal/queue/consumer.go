package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditLogFile is the file, inside the consumer's log directory, that
// receives one line per entry event.
const AuditLogFile = "raffle.log"

// Consumer drains raffle.entries into an append-only audit log.
type Consumer struct {
    url    string
    logDir string
    logger *zap.Logger
}

// NewConsumer returns a consumer writing to logDir/raffle.log.
func NewConsumer(url, logDir string, logger *zap.Logger) *Consumer {
    if logger == nil {
        logger = zap.NewNop()
    }
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{url: url, logDir: logDir, logger: logger.Named("audit-consumer")}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s;
// a message that cannot be processed is rejected without requeue so the
// loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.logger.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.logger.Warn("consume loop ended, reconnecting", zap.Error(err))
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.logger.Warn("set QoS failed", zap.Error(err))
    }
    if err := declareEntriesQueue(ch); err != nil {
        return err
    }

    msgs, err := ch.Consume(EntriesQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.HandleMessage(d.Body); err != nil {
                c.logger.Error("handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one EntryEvent and appends its audit line.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev EntryEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event type missing")
    }
    if err := os.MkdirAll(c.logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.logDir, AuditLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as a single human-friendly line.  Contact
// numbers are masked down to their last four digits.
func FormatAuditLine(ev EntryEvent) string {
    return fmt.Sprintf("[%s] %s | entry_id=%s | slot=%d | name=%q | contact=%s | paid=%t | actor=%s\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.EntryID, ev.SlotNumber,
        ev.Name, MaskContact(ev.ContactNumber), ev.Paid, ev.Actor)
}

// MaskContact hides all but the last four characters of a contact number.
func MaskContact(s string) string {
    if len(s) <= 4 {
        return s
    }
    masked := make([]byte, len(s))
    for i := range masked {
        if i < len(s)-4 {
            masked[i] = '*'
        } else {
            masked[i] = s[i]
        }
    }
    return string(masked)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
