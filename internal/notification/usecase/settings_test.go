package usecase

import (
	"context"
	"testing"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

func TestGetSettings(t *testing.T) {

	t.Run("ReturnsStoredSettings", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, userID int64) (*entity.Settings, error) {
				return &entity.Settings{UserID: userID, Timezone: "Asia/Jakarta"}, nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo})

		// Act
		got, err := uc.GetSettings(memberCtx())

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.UserID != 7 || got.Timezone != "Asia/Jakarta" {
			t.Fatalf("unexpected settings: %+v", got)
		}
	})

	t.Run("MissingRowFallsBackToDefaults", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			getSettings: func(_ context.Context, _ int64) (*entity.Settings, error) {
				return nil, goerror.ErrNotFound
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo})

		// Act
		got, err := uc.GetSettings(memberCtx())

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.NotificationsEnabled || got.Timezone != "UTC" {
			t.Fatalf("expected defaults, got %+v", got)
		}
		if got.FirstReminderMinutes != 60 || got.SecondReminderMinutes != 10 {
			t.Fatalf("unexpected default reminder offsets: %+v", got)
		}
	})
}

func TestUpdateSettings(t *testing.T) {

	t.Run("PersistsForAuthenticatedUser", func(t *testing.T) {

		// Arrange
		var saved []entity.Settings
		repo := &fakeRepo{
			upsertSettings: func(_ context.Context, in entity.Settings) error {
				saved = append(saved, in)
				return nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo})

		// Act
		err := uc.UpdateSettings(memberCtx(), UpdateSettingsInput{
			NotificationsEnabled: true,
			PushEnabled:          true,
			FirstReminderMinutes: 30,
			Timezone:             "Europe/Berlin",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(saved) != 1 || saved[0].UserID != 7 || saved[0].Timezone != "Europe/Berlin" {
			t.Fatalf("unexpected persisted settings: %+v", saved)
		}
	})

	t.Run("RejectsInvalidTimezone", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}})

		// Act
		err := uc.UpdateSettings(memberCtx(), UpdateSettingsInput{
			NotificationsEnabled: true,
			Timezone:             "Mars/Olympus",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected error for invalid timezone")
		}
	})
}
