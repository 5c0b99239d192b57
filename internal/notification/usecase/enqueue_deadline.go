package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

type EnqueueDeadlineInput struct {
	TodoID   int64  `validate:"required,gt=0"`
	UserID   int64  `validate:"required,gt=0"`
	Title    string `validate:"required"`
	Deadline time.Time
}

// EnqueueDeadline turns a todo deadline event into up to two reminder
// deliveries, offset by the user's reminder settings. Slots whose instant is
// already past are dropped; re-consuming the same event overwrites the same
// delivery keys.
func (s *Usecase) EnqueueDeadline(ctx context.Context, in EnqueueDeadlineInput) error {
	ctx, span := s.startSpan(ctx, "EnqueueDeadline")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if in.Deadline.IsZero() {
		return goerror.NewBusiness("deadline is required", goerror.CodeInvalidInput)
	}

	settings, err := s.repoDB.GetSettings(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		def := entity.DefaultSettings(in.UserID)
		settings = &def
	} else if err != nil {
		slog.ErrorContext(ctx, "failed to repo get settings", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !settings.NotificationsEnabled {
		return nil
	}

	now := s.clock.Now()

	slots := []struct {
		suffix  string
		minutes int32
		ntype   entity.NotificationType
	}{
		{suffix: "first", minutes: settings.FirstReminderMinutes, ntype: entity.NotificationTypeDeadlineFirst},
		{suffix: "second", minutes: settings.SecondReminderMinutes, ntype: entity.NotificationTypeDeadlineSecond},
	}

	var earliest time.Time
	for _, slot := range slots {
		if slot.minutes <= 0 {
			continue
		}

		at := in.Deadline.Add(-time.Duration(slot.minutes) * time.Minute)
		if !at.After(now) {
			continue
		}

		delivery := entity.ScheduledDelivery{
			Key:              deadlineDeliveryKey(in.TodoID, in.UserID, slot.suffix),
			UserID:           in.UserID,
			Title:            "Deadline reminder",
			Message:          "Task \"" + in.Title + "\" is due in " + strconv.FormatInt(int64(slot.minutes), 10) + " minutes",
			ScheduledFor:     at.UTC(),
			ItemID:           in.TodoID,
			ItemType:         "todo",
			NotificationType: slot.ntype,
		}

		if err := s.queue.Enqueue(ctx, delivery); err != nil {
			slog.ErrorContext(ctx, "failed to enqueue deadline reminder", "key", delivery.Key, "error", err)
			return goerror.NewServer(err)
		}

		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
	}

	if !earliest.IsZero() {
		if err := s.trigger.ScheduleProcessAt(ctx, earliest); err != nil {
			slog.ErrorContext(ctx, "failed to schedule processing trigger", "at", earliest, "error", err)
			return goerror.NewServer(err)
		}
	}

	return nil
}

func deadlineDeliveryKey(todoID, userID int64, suffix string) string {
	return "todo:" + strconv.FormatInt(todoID, 10) +
		":" + strconv.FormatInt(userID, 10) +
		":" + suffix
}
