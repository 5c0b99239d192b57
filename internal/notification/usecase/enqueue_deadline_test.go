package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

func TestEnqueueDeadline(t *testing.T) {

	now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	t.Run("EnqueuesBothReminderSlots", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, userID int64) (*entity.Settings, error) {
				return enabledSettings(userID), nil
			},
		}
		queue := &fakeQueue{}
		trigger := &fakeTrigger{}
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: trigger,
			Clock:   &fakeClock{now: now},
		})
		deadline := now.Add(2 * time.Hour)

		// Act
		err := uc.EnqueueDeadline(context.Background(), EnqueueDeadlineInput{
			TodoID:   55,
			UserID:   1,
			Title:    "Ship release",
			Deadline: deadline,
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		byKey := queue.enqueuedByKey()
		first, ok := byKey["todo:55:1:first"]
		if !ok {
			t.Fatalf("expected first reminder enqueued, got %v", byKey)
		}
		second, ok := byKey["todo:55:1:second"]
		if !ok {
			t.Fatalf("expected second reminder enqueued, got %v", byKey)
		}
		if !first.ScheduledFor.Equal(deadline.Add(-60 * time.Minute)) {
			t.Fatalf("first reminder scheduled at %v", first.ScheduledFor)
		}
		if !second.ScheduledFor.Equal(deadline.Add(-10 * time.Minute)) {
			t.Fatalf("second reminder scheduled at %v", second.ScheduledFor)
		}
		if first.NotificationType != entity.NotificationTypeDeadlineFirst ||
			second.NotificationType != entity.NotificationTypeDeadlineSecond {
			t.Fatalf("unexpected notification types: %s, %s", first.NotificationType, second.NotificationType)
		}
		if first.Message != `Task "Ship release" is due in 60 minutes` {
			t.Fatalf("unexpected message: %q", first.Message)
		}
		if first.ItemID != 55 || first.ItemType != "todo" {
			t.Fatalf("unexpected item reference: %d %s", first.ItemID, first.ItemType)
		}

		// Trigger fires at the earlier slot.
		if len(trigger.ats) != 1 || !trigger.ats[0].Equal(first.ScheduledFor) {
			t.Fatalf("expected trigger at first reminder, got %v", trigger.ats)
		}
	})

	t.Run("DropsSlotsAlreadyPast", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, userID int64) (*entity.Settings, error) {
				return enabledSettings(userID), nil
			},
		}
		queue := &fakeQueue{}
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: &fakeTrigger{},
			Clock:   &fakeClock{now: now},
		})
		// 30 minutes out: the 60-minute slot is already past, the 10-minute
		// slot is still ahead.
		deadline := now.Add(30 * time.Minute)

		// Act
		err := uc.EnqueueDeadline(context.Background(), EnqueueDeadlineInput{
			TodoID:   55,
			UserID:   1,
			Title:    "Ship release",
			Deadline: deadline,
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		byKey := queue.enqueuedByKey()
		if len(byKey) != 1 {
			t.Fatalf("expected only the second slot, got %v", byKey)
		}
		if _, ok := byKey["todo:55:1:second"]; !ok {
			t.Fatalf("expected second reminder enqueued, got %v", byKey)
		}
	})

	t.Run("DisabledNotificationsEnqueueNothing", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, userID int64) (*entity.Settings, error) {
				s := entity.DefaultSettings(userID)
				s.NotificationsEnabled = false
				return &s, nil
			},
		}
		queue := &fakeQueue{}
		trigger := &fakeTrigger{}
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: trigger,
			Clock:   &fakeClock{now: now},
		})

		// Act
		err := uc.EnqueueDeadline(context.Background(), EnqueueDeadlineInput{
			TodoID:   55,
			UserID:   1,
			Title:    "Ship release",
			Deadline: now.Add(2 * time.Hour),
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(queue.enqueuedByKey()) != 0 || len(trigger.ats) != 0 {
			t.Fatalf("expected no deliveries for a muted user")
		}
	})

	t.Run("ZeroMinuteSlotIsDisabled", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, userID int64) (*entity.Settings, error) {
				s := entity.DefaultSettings(userID)
				s.SecondReminderMinutes = 0
				return &s, nil
			},
		}
		queue := &fakeQueue{}
		uc := newTestUsecase(Dependency{
			RepoDB:  repo,
			Queue:   queue,
			Trigger: &fakeTrigger{},
			Clock:   &fakeClock{now: now},
		})

		// Act
		err := uc.EnqueueDeadline(context.Background(), EnqueueDeadlineInput{
			TodoID:   55,
			UserID:   1,
			Title:    "Ship release",
			Deadline: now.Add(2 * time.Hour),
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		byKey := queue.enqueuedByKey()
		if len(byKey) != 1 {
			t.Fatalf("expected only the first slot, got %v", byKey)
		}
	})

	t.Run("RejectsZeroDeadline", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}, Queue: &fakeQueue{}})

		// Act
		err := uc.EnqueueDeadline(context.Background(), EnqueueDeadlineInput{
			TodoID: 55,
			UserID: 1,
			Title:  "Ship release",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected error for missing deadline")
		}
	})
}
