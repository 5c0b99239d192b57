package usecase

import (
	"context"
	"testing"
	"time"
)

func TestStreamNotifications(t *testing.T) {

	t.Run("DeliversToSubscribedUser", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch := uc.StreamNotifications(ctx, 7)

		// Act
		uc.publishNotification(StreamEvent{UserID: 7, Title: "hello"})

		// Assert
		select {
		case evt := <-ch:
			if evt.Title != "hello" {
				t.Fatalf("unexpected event: %+v", evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected event on stream")
		}
	})

	t.Run("DoesNotLeakAcrossUsers", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch := uc.StreamNotifications(ctx, 7)

		// Act
		uc.publishNotification(StreamEvent{UserID: 8, Title: "not yours"})

		// Assert
		select {
		case evt := <-ch:
			t.Fatalf("unexpected event for another user: %+v", evt)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("ClosesOnContextCancel", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})
		ctx, cancel := context.WithCancel(context.Background())
		ch := uc.StreamNotifications(ctx, 7)

		// Act
		cancel()

		// Assert
		select {
		case _, open := <-ch:
			if open {
				t.Fatalf("expected channel closed without events")
			}
		case <-time.After(time.Second):
			t.Fatalf("expected channel to close")
		}
	})

	t.Run("PublishIsSafeDuringChurn", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})

		// Act
		// Subscribers come and go while events stream for the same user, so
		// publishing overlaps both map mutation and channel close.
		done := make(chan struct{})
		go func() {
			for i := 0; i < 200; i++ {
				uc.publishNotification(StreamEvent{UserID: 7})
			}
			close(done)
		}()
		for i := 0; i < 50; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			ch := uc.StreamNotifications(ctx, 7)
			cancel()
			for range ch {
			}
		}

		// Assert
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("publish did not finish while subscribers churned")
		}
	})

	t.Run("SlowSubscriberDoesNotBlockPublish", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		uc.StreamNotifications(ctx, 7)

		// Act
		// The subscriber buffer holds 10 events; nothing drains them.
		done := make(chan struct{})
		go func() {
			for i := 0; i < 50; i++ {
				uc.publishNotification(StreamEvent{UserID: 7})
			}
			close(done)
		}()

		// Assert
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("publish must never block on a slow subscriber")
		}
	})
}
