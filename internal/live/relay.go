package live

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangesChannel is the Redis Pub/Sub channel carrying change signals
// between server instances.  The payload is the sender's instance id.
const ChangesChannel = "raffle:entries:changed"

// RedisRelay shares change signals between instances.  Each instance
// ignores its own messages since it already rebuilt locally.
type RedisRelay struct {
	rdb        *redis.Client
	instanceID string
	logger     *zap.Logger
}

// NewRedisRelay returns a relay identified by instanceID.
func NewRedisRelay(rdb *redis.Client, instanceID string, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{rdb: rdb, instanceID: instanceID, logger: logger.Named("relay")}
}

// Announce publishes a change signal.
func (r *RedisRelay) Announce(ctx context.Context) error {
	if err := r.rdb.Publish(ctx, ChangesChannel, r.instanceID).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Listen calls onForeign for every signal sent by another instance until
// ctx is cancelled.
func (r *RedisRelay) Listen(ctx context.Context, onForeign func()) error {
	sub := r.rdb.Subscribe(ctx, ChangesChannel)
	defer func() { _ = sub.Close() }()

	// Wait for the subscription to be confirmed before relying on it.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChangesChannel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription to %s closed", ChangesChannel)
			}
			if msg.Payload == r.instanceID {
				continue
			}
			r.logger.Debug("change signal from peer", zap.String("peer", msg.Payload))
			onForeign()
		}
	}
}
