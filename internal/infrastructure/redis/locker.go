package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
)

// OrderLocker serializes payment state transitions per order reference. A
// callback and a refund for the same order may land on different instances;
// the Redis lock makes exactly one of them proceed at a time.
type OrderLocker struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewOrderLocker creates a locker with the given lock TTL.
func NewOrderLocker(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *OrderLocker {
	return &OrderLocker{
		client:     client,
		ttl:        ttl,
		maxRetries: 10,
		retryDelay: 100 * time.Millisecond,
		logger:     logger,
	}
}

// WithOrderLock runs fn while holding the lock for the order reference.
func (ol *OrderLocker) WithOrderLock(ctx context.Context, reference string, fn func(ctx context.Context) error) error {
	lock := NewDistributedLock(ol.client, "order:"+reference, ol.ttl)

	if err := lock.AcquireWithRetry(ctx, ol.maxRetries, ol.retryDelay); err != nil {
		return fmt.Errorf("%w: order %s: %v", domainErrors.ErrLockAcquisitionFailed, reference, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			ol.logger.Warn().Err(err).Str("reference", reference).Msg("failed to release order lock")
		}
	}()

	return fn(ctx)
}
