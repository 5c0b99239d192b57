package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	payloadKeyPrefix = "notification:delivery:"
	pendingIndexKey  = "notification:deliveries:pending"
)

// Queue is the durable, time-ordered index of pending deliveries. Payloads
// live at notification:delivery:<key>; the pending sorted set scores each key
// by its Unix-millisecond fire instant. Range reads and removal operate on
// the same logical structure, so a removed entry never reappears.
type Queue struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func New(client *redis.Client, ins instrument.Instrumentation) *Queue {
	return &Queue{client: client, ins: ins}
}

func (q *Queue) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return q.ins.Tracer("notification.outbound.queue").Start(ctx, name)
}

func (q *Queue) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// withRetry runs fn with a short fibonacci backoff. Context cancellation is
// never retried.
func (q *Queue) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// Enqueue durably stores the payload and indexes the key by its fire instant.
// Re-enqueueing the same delivery overwrites the same payload and score, so
// repeated identical enqueues are idempotent.
func (q *Queue) Enqueue(ctx context.Context, d entity.ScheduledDelivery) (err error) {
	ctx, span := q.startSpan(ctx, "Enqueue")
	defer func() { q.endSpan(span, err) }()

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("queue: marshal delivery %q: %w", d.Key, err)
	}

	return q.withRetry(ctx, func(ctx context.Context) error {
		pipe := q.client.TxPipeline()
		pipe.Set(ctx, payloadKeyPrefix+d.Key, payload, 0)
		pipe.ZAdd(ctx, pendingIndexKey, redis.Z{
			Score:  float64(d.ScheduledFor.UnixMilli()),
			Member: d.Key,
		})
		_, execErr := pipe.Exec(ctx)
		return execErr
	})
}

// DueBefore returns every delivery scheduled at or before now, in ascending
// fire-instant order, without removing anything. Index entries whose payload
// has vanished are pruned and skipped.
func (q *Queue) DueBefore(ctx context.Context, now time.Time) (_ []entity.ScheduledDelivery, err error) {
	ctx, span := q.startSpan(ctx, "DueBefore")
	defer func() { q.endSpan(span, err) }()

	var keys []string
	err = q.withRetry(ctx, func(ctx context.Context) error {
		var rangeErr error
		keys, rangeErr = q.client.ZRangeByScore(ctx, pendingIndexKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(now.UnixMilli(), 10),
		}).Result()
		return rangeErr
	})
	if err != nil {
		return nil, fmt.Errorf("queue: range pending index: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	payloadKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		payloadKeys = append(payloadKeys, payloadKeyPrefix+key)
	}

	var raws []any
	err = q.withRetry(ctx, func(ctx context.Context) error {
		var getErr error
		raws, getErr = q.client.MGet(ctx, payloadKeys...).Result()
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("queue: load payloads: %w", err)
	}

	deliveries := make([]entity.ScheduledDelivery, 0, len(keys))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Dangling index entry. Prune so it stops surfacing.
			q.client.ZRem(ctx, pendingIndexKey, keys[i])
			continue
		}

		var d entity.ScheduledDelivery
		if uErr := json.Unmarshal([]byte(str), &d); uErr != nil {
			return nil, fmt.Errorf("queue: decode delivery %q: %w", keys[i], uErr)
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// NextAt returns the fire instant of the earliest pending delivery. The
// second return value is false when the queue is empty.
func (q *Queue) NextAt(ctx context.Context) (_ time.Time, _ bool, err error) {
	ctx, span := q.startSpan(ctx, "NextAt")
	defer func() { q.endSpan(span, err) }()

	var entries []redis.Z
	err = q.withRetry(ctx, func(ctx context.Context) error {
		var rangeErr error
		entries, rangeErr = q.client.ZRangeWithScores(ctx, pendingIndexKey, 0, 0).Result()
		return rangeErr
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("queue: peek pending index: %w", err)
	}
	if len(entries) == 0 {
		return time.Time{}, false, nil
	}

	return time.UnixMilli(int64(entries[0].Score)).UTC(), true, nil
}

// Remove atomically drops both the index entry and the payload. Removing a
// key that is not queued is a no-op; concurrent removes are safe.
func (q *Queue) Remove(ctx context.Context, key string) (err error) {
	ctx, span := q.startSpan(ctx, "Remove")
	defer func() { q.endSpan(span, err) }()

	return q.withRetry(ctx, func(ctx context.Context) error {
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, pendingIndexKey, key)
		pipe.Del(ctx, payloadKeyPrefix+key)
		_, execErr := pipe.Exec(ctx)
		return execErr
	})
}
