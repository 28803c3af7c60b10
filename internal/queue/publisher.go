package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher sends EntryEvent messages to the raffle.entries queue.  Each
// call dials the broker, publishes one persistent message and closes the
// connection; events are rare enough that a pooled channel is not needed.
type Publisher struct {
    url    string
    logger *zap.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Publisher{url: url, logger: logger.Named("publisher")}
}

// Publish sends ev.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev EntryEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.logger.Warn("dial failed", zap.Error(err))
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn("channel open failed", zap.Error(err))
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := declareEntriesQueue(ch); err != nil {
        p.logger.Warn("queue declare failed", zap.Error(err))
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         string(ev.Type),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",           // default exchange
        EntriesQueue, // routing key = queue name
        false,        // mandatory
        false,        // immediate
        pub,
    ); err != nil {
        p.logger.Warn("publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// declareEntriesQueue makes sure the durable queue exists (idempotent).
func declareEntriesQueue(ch *amqp.Channel) error {
    if _, err := ch.QueueDeclare(
        EntriesQueue, // name
        true,         // durable
        false,        // autoDelete
        false,        // exclusive
        false,        // noWait
        nil,          // args
    ); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
