package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goroutine"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/idempotency"
)

const claimKeyPrefix = "delivery:"

type ProcessDueInput struct {
	// Payload is the raw request body the signature was computed over.
	Payload []byte
	// Signature is the hex HMAC of Payload.
	Signature string
}

type ProcessDueOutput struct {
	Due       int   `json:"due"`
	Delivered int64 `json:"delivered"`
	Skipped   int64 `json:"skipped"`
}

// ProcessDue settles every delivery that is due. Each delivery is claimed
// before any side effect runs, so concurrent invocations never double-send;
// a delivery whose history insert fails releases its claim and stays queued
// for the next invocation. Channel failures after the history insert are
// logged and swallowed, the delivery still settles.
func (s *Usecase) ProcessDue(ctx context.Context, in ProcessDueInput) (*ProcessDueOutput, error) {
	ctx, span := s.startSpan(ctx, "ProcessDue")
	defer span.End()

	if err := s.verifySignature(in.Payload, in.Signature); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	due, err := s.queue.DueBefore(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read due deliveries", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &ProcessDueOutput{Due: len(due)}

	mgr := goroutine.NewManager(s.fanoutLimit())
	for _, d := range due {
		mgr.Go(ctx, func(ctx context.Context) error {
			delivered, err := s.settleOne(ctx, d)
			if err != nil {
				return err
			}
			if delivered {
				atomic.AddInt64(&out.Delivered, 1)
			} else {
				atomic.AddInt64(&out.Skipped, 1)
			}
			return nil
		})
	}
	waitErr := mgr.Wait()

	if next, ok, err := s.queue.NextAt(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to peek next pending delivery", "error", err)
	} else if ok {
		if err := s.trigger.ScheduleProcessAt(ctx, next); err != nil {
			slog.ErrorContext(ctx, "failed to schedule processing trigger", "at", next, "error", err)
		}
	}

	if waitErr != nil {
		slog.ErrorContext(ctx, "delivery processing finished with failures", "error", waitErr)
		return nil, goerror.NewServer(waitErr)
	}

	return out, nil
}

// settleOne runs the claim state machine for a single delivery. It reports
// whether the delivery reached the user's inbox on this invocation.
func (s *Usecase) settleOne(ctx context.Context, d entity.ScheduledDelivery) (bool, error) {
	claimKey := claimKeyPrefix + d.Key

	state, err := s.idem.Acquire(ctx, claimKey, s.claimLock())
	if err != nil {
		slog.ErrorContext(ctx, "failed to claim delivery", "key", d.Key, "error", err)
		return false, err
	}

	switch state {
	case idempotency.StateInProgress:
		// Another worker holds the claim.
		return false, nil
	case idempotency.StateCompleted:
		// Already settled. Re-attempt the queue removal in case the previous
		// worker crashed between completing and removing.
		if err := s.queue.Remove(ctx, d.Key); err != nil {
			slog.WarnContext(ctx, "failed to remove settled delivery", "key", d.Key, "error", err)
		}
		return false, nil
	case idempotency.StateFailed:
		slog.WarnContext(ctx, "delivery previously marked failed, skipping", "key", d.Key)
		return false, nil
	}

	settings, err := s.repoDB.GetSettings(ctx, d.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		def := entity.DefaultSettings(d.UserID)
		settings = &def
	} else if err != nil {
		slog.ErrorContext(ctx, "failed to repo get settings", "user_id", d.UserID, "error", err)
		s.releaseClaim(ctx, claimKey)
		return false, err
	}

	if !settings.NotificationsEnabled {
		// Suppressed deliveries settle without side effects.
		if err := s.queue.Remove(ctx, d.Key); err != nil {
			s.releaseClaim(ctx, claimKey)
			return false, err
		}
		s.markClaimCompleted(ctx, claimKey)
		return false, nil
	}

	record := entity.CreateHistory{
		ID:               s.uid.Generate(),
		UserID:           d.UserID,
		DeliveryKey:      d.Key,
		Title:            d.Title,
		Message:          d.Message,
		NotificationType: d.NotificationType,
		ItemID:           d.ItemID,
		ItemType:         d.ItemType,
	}

	inserted, err := s.repoDB.CreateHistory(ctx, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create history", "key", d.Key, "error", err)
		s.releaseClaim(ctx, claimKey)
		return false, err
	}

	if inserted {
		if settings.BrowserEnabled {
			s.publishNotification(s.buildStreamEvent(record))
		}
		if settings.PushEnabled {
			s.pushToSubscriptions(ctx, record)
		}
	}

	if err := s.queue.Remove(ctx, d.Key); err != nil {
		slog.ErrorContext(ctx, "failed to remove settled delivery", "key", d.Key, "error", err)
		s.releaseClaim(ctx, claimKey)
		return inserted, err
	}

	s.markClaimCompleted(ctx, claimKey)

	return inserted, nil
}

// pushToSubscriptions sends the push payload to every subscription the user
// has. Failures are isolated per subscription and never fail the delivery.
func (s *Usecase) pushToSubscriptions(ctx context.Context, record entity.CreateHistory) {
	subs, err := s.repoDB.ListSubscriptions(ctx, record.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list push subscriptions", "user_id", record.UserID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"title":             record.Title,
		"message":           record.Message,
		"notification_type": record.NotificationType,
		"item_id":           record.ItemID,
		"item_type":         record.ItemType,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal push payload", "user_id", record.UserID, "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.push.Send(ctx, sub, payload); err != nil {
			if errors.Is(err, entity.ErrSubscriptionGone) {
				slog.WarnContext(ctx, "push subscription gone",
					"user_id", record.UserID, "subscription_id", sub.ID)
				continue
			}
			slog.ErrorContext(ctx, "failed to send push",
				"user_id", record.UserID, "subscription_id", sub.ID, "error", err)
		}
	}
}

func (s *Usecase) releaseClaim(ctx context.Context, claimKey string) {
	if err := s.idem.Release(ctx, claimKey); err != nil {
		slog.ErrorContext(ctx, "failed to release delivery claim", "key", claimKey, "error", err)
	}
}

func (s *Usecase) markClaimCompleted(ctx context.Context, claimKey string) {
	if err := s.idem.MarkCompleted(ctx, claimKey, s.claimRetention()); err != nil {
		slog.ErrorContext(ctx, "failed to mark delivery claim completed", "key", claimKey, "error", err)
	}
}

func (s *Usecase) claimLock() time.Duration {
	if d := s.cfg.GetSecond("notification.claim_lock_seconds"); d > 0 {
		return d
	}
	return time.Minute
}

func (s *Usecase) claimRetention() time.Duration {
	if d := s.cfg.GetHour("notification.claim_retention_hours"); d > 0 {
		return d
	}
	return 24 * time.Hour
}
