package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goroutine"
)

type ExpandRulesInput struct {
	// Payload is the raw request body the signature was computed over.
	Payload []byte
	// Signature is the hex HMAC of Payload.
	Signature string
}

type ExpandRulesOutput struct {
	Rules      int   `json:"rules"`
	Recipients int   `json:"recipients"`
	Enqueued   int64 `json:"enqueued"`
}

// ExpandRules fans every active rule out to every opted-in recipient. Each
// (rule, recipient) pair becomes one queued delivery scheduled at the rule's
// next wall-clock occurrence in the recipient's timezone. Re-running an
// expansion overwrites the same delivery keys, so it is safe to call again.
func (s *Usecase) ExpandRules(ctx context.Context, in ExpandRulesInput) (*ExpandRulesOutput, error) {
	ctx, span := s.startSpan(ctx, "ExpandRules")
	defer span.End()

	if err := s.verifySignature(in.Payload, in.Signature); err != nil {
		return nil, err
	}

	rules, err := s.repoDB.ListActiveRules(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list active rules", "error", err)
		return nil, goerror.NewServer(err)
	}

	recipients, err := s.repoDB.ListRecipients(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list recipients", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &ExpandRulesOutput{Rules: len(rules), Recipients: len(recipients)}
	if len(rules) == 0 || len(recipients) == 0 {
		return out, nil
	}

	now := s.clock.Now()

	var mu sync.Mutex
	var earliest time.Time

	mgr := goroutine.NewManager(s.fanoutLimit())
	for _, rule := range rules {
		for _, recipient := range recipients {
			mgr.Go(ctx, func(ctx context.Context) error {
				at, err := s.expandOne(ctx, rule, recipient, now)
				if err != nil {
					return err
				}

				mu.Lock()
				out.Enqueued++
				if earliest.IsZero() || at.Before(earliest) {
					earliest = at
				}
				mu.Unlock()

				return nil
			})
		}
	}
	waitErr := mgr.Wait()

	if !earliest.IsZero() {
		if err := s.trigger.ScheduleProcessAt(ctx, earliest); err != nil {
			slog.ErrorContext(ctx, "failed to schedule processing trigger", "at", earliest, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	if waitErr != nil {
		slog.ErrorContext(ctx, "rule expansion finished with failures", "error", waitErr)
		return nil, goerror.NewServer(waitErr)
	}

	return out, nil
}

// expandOne enqueues a single (rule, recipient) delivery and returns its
// scheduled instant.
func (s *Usecase) expandOne(ctx context.Context, rule entity.Rule, recipient entity.Recipient, now time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(recipient.Timezone)
	if err != nil {
		slog.WarnContext(ctx, "recipient has invalid timezone, falling back to UTC",
			"user_id", recipient.UserID, "timezone", recipient.Timezone)
		loc = time.UTC
	}

	at, err := NextOccurrence(rule, now, loc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve rule occurrence", "rule_id", rule.ID, "error", err)
		return time.Time{}, err
	}

	delivery := entity.ScheduledDelivery{
		Key:              scheduledDeliveryKey(rule.ID, recipient.UserID, at),
		UserID:           recipient.UserID,
		Title:            rule.Title,
		Message:          s.renderMessage(ctx, recipient.UserID, rule.MessageTemplate),
		ScheduledFor:     at.UTC(),
		NotificationType: entity.NotificationTypeScheduled,
	}

	if err := s.queue.Enqueue(ctx, delivery); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue delivery",
			"key", delivery.Key, "user_id", recipient.UserID, "error", err)
		return time.Time{}, err
	}

	return at, nil
}

func (s *Usecase) fanoutLimit() int {
	if limit := s.cfg.GetInt("notification.fanout_concurrency"); limit > 0 {
		return limit
	}
	return 8
}

func (s *Usecase) verifySignature(payload []byte, signature string) error {
	if signature == "" || !s.signer.Verify(signature, string(payload)) {
		return goerror.NewBusiness("invalid request signature", goerror.CodeUnauthorized)
	}
	return nil
}

func scheduledDeliveryKey(ruleID, userID int64, at time.Time) string {
	return "rule:" + strconv.FormatInt(ruleID, 10) +
		":" + strconv.FormatInt(userID, 10) +
		":" + strconv.FormatInt(at.UnixMilli(), 10)
}
