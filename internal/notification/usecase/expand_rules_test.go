package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

func TestExpandRules(t *testing.T) {

	t.Run("FansOutPerRecipientTimezone", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{
			ID:              10,
			Title:           "Daily summary",
			MessageTemplate: "You have {todoCount} pending todos",
			ScheduleType:    entity.ScheduleTypeDaily,
			ScheduleTime:    "09:00",
			IsActive:        true,
		}
		repo := &fakeRepo{
			listActiveRules: func(_ context.Context) ([]entity.Rule, error) {
				return []entity.Rule{rule}, nil
			},
			listRecipients: func(_ context.Context) ([]entity.Recipient, error) {
				return []entity.Recipient{
					{UserID: 1, Timezone: "UTC"},
					{UserID: 2, Timezone: "Asia/Jakarta"},
					{UserID: 3, Timezone: "America/New_York"},
				}, nil
			},
			countPendingTodos: func(_ context.Context, _ int64) (int64, error) { return 4, nil },
		}
		queue := &fakeQueue{}
		trigger := &fakeTrigger{}
		now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: trigger,
			Clock:   &fakeClock{now: now},
		})

		// Act
		out, err := uc.ExpandRules(context.Background(), ExpandRulesInput{
			Payload:   []byte(`{}`),
			Signature: "good",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Rules != 1 || out.Recipients != 3 || out.Enqueued != 3 {
			t.Fatalf("unexpected counts: %+v", out)
		}

		byKey := queue.enqueuedByKey()
		if len(byKey) != 3 {
			t.Fatalf("expected 3 enqueued deliveries, got %d", len(byKey))
		}

		// Each recipient gets the rule's next 09:00 in their own zone.
		jakarta, _ := time.LoadLocation("Asia/Jakarta")
		york, _ := time.LoadLocation("America/New_York")
		wants := map[int64]time.Time{
			1: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			2: time.Date(2024, 1, 3, 9, 0, 0, 0, jakarta),
			3: time.Date(2024, 1, 2, 9, 0, 0, 0, york),
		}
		for _, d := range byKey {
			want, ok := wants[d.UserID]
			if !ok {
				t.Fatalf("unexpected recipient %d", d.UserID)
			}
			if !d.ScheduledFor.Equal(want) {
				t.Fatalf("user %d scheduled at %v, expected %v", d.UserID, d.ScheduledFor, want)
			}
			if d.Message != "You have 4 pending todos" {
				t.Fatalf("unexpected rendered message: %q", d.Message)
			}
			if d.NotificationType != entity.NotificationTypeScheduled {
				t.Fatalf("unexpected notification type: %s", d.NotificationType)
			}
		}

		// The trigger fires at the earliest of the three instants.
		if len(trigger.ats) != 1 {
			t.Fatalf("expected one trigger call, got %d", len(trigger.ats))
		}
		if !trigger.ats[0].Equal(wants[1]) {
			t.Fatalf("trigger scheduled at %v, expected %v", trigger.ats[0], wants[1])
		}
	})

	t.Run("RejectsBadSignature", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})

		// Act
		_, err := uc.ExpandRules(context.Background(), ExpandRulesInput{
			Payload:   []byte(`{}`),
			Signature: "forged",
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})

	t.Run("InvalidTimezoneFallsBackToUTC", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{
			ID:              10,
			Title:           "Daily summary",
			MessageTemplate: "hello",
			ScheduleType:    entity.ScheduleTypeDaily,
			ScheduleTime:    "09:00",
			IsActive:        true,
		}
		repo := &fakeRepo{
			listActiveRules: func(_ context.Context) ([]entity.Rule, error) {
				return []entity.Rule{rule}, nil
			},
			listRecipients: func(_ context.Context) ([]entity.Recipient, error) {
				return []entity.Recipient{{UserID: 9, Timezone: "Mars/Olympus"}}, nil
			},
		}
		queue := &fakeQueue{}
		now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: &fakeTrigger{},
			Clock:   &fakeClock{now: now},
		})

		// Act
		out, err := uc.ExpandRules(context.Background(), ExpandRulesInput{
			Payload:   []byte(`{}`),
			Signature: "good",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Enqueued != 1 {
			t.Fatalf("expected one enqueued delivery, got %d", out.Enqueued)
		}
		d := queue.enqueuedByKey()["rule:10:9:"+"1704186000000"]
		want := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
		if !d.ScheduledFor.Equal(want) {
			t.Fatalf("scheduled at %v, expected %v", d.ScheduledFor, want)
		}
	})

	t.Run("NoRecipientsSkipsTrigger", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			listActiveRules: func(_ context.Context) ([]entity.Rule, error) {
				return []entity.Rule{{ID: 10, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}}, nil
			},
			listRecipients: func(_ context.Context) ([]entity.Recipient, error) { return nil, nil },
		}
		trigger := &fakeTrigger{}
		uc := newTestUsecase(Dependency{RepoDB: repo, Queue: &fakeQueue{}, Trigger: trigger})

		// Act
		out, err := uc.ExpandRules(context.Background(), ExpandRulesInput{
			Payload:   []byte(`{}`),
			Signature: "good",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Enqueued != 0 || len(trigger.ats) != 0 {
			t.Fatalf("expected no deliveries and no trigger, got %+v, %d trigger calls", out, len(trigger.ats))
		}
	})

	t.Run("EnqueueFailureSurfacesAsServerError", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			listActiveRules: func(_ context.Context) ([]entity.Rule, error) {
				return []entity.Rule{{ID: 10, MessageTemplate: "x", ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}}, nil
			},
			listRecipients: func(_ context.Context) ([]entity.Recipient, error) {
				return []entity.Recipient{{UserID: 1, Timezone: "UTC"}}, nil
			},
		}
		queue := &fakeQueue{enqueueErr: errors.New("redis down")}
		uc := newTestUsecase(Dependency{RepoDB: repo, Queue: queue, Trigger: &fakeTrigger{}})

		// Act
		_, err := uc.ExpandRules(context.Background(), ExpandRulesInput{
			Payload:   []byte(`{}`),
			Signature: "good",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected error when enqueue fails")
		}
	})
}
