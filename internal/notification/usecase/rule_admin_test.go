package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/jwt"
)

func adminCtx() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 99, UserEmail: "admin@taskflow.app"})
}

func memberCtx() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 7, UserEmail: "user@taskflow.app"})
}

func adminConfig() *stubConfig {
	return &stubConfig{arrays: map[string][]string{
		"notification.admin_emails": {"admin@taskflow.app"},
	}}
}

func TestCreateRule(t *testing.T) {

	t.Run("CreatesWeeklyRule", func(t *testing.T) {

		// Arrange
		var created []entity.CreateRule
		repo := &fakeRepo{
			createRule: func(_ context.Context, in entity.CreateRule) error {
				created = append(created, in)
				return nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo, Config: adminConfig()})

		// Act
		err := uc.CreateRule(adminCtx(), CreateRuleInput{
			Title:           "Weekly digest",
			MessageTemplate: "You have {todoCount} todos",
			ScheduleType:    "weekly",
			ScheduleTime:    "09:00",
			ScheduleDay:     3,
			IsActive:        true,
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created) != 1 {
			t.Fatalf("expected one rule created")
		}
		if created[0].ScheduleType != entity.ScheduleTypeWeekly || created[0].ScheduleDay != 3 {
			t.Fatalf("unexpected schedule: %+v", created[0])
		}
		if created[0].CreatedBy != 99 || created[0].ID == 0 {
			t.Fatalf("expected creator and generated id, got %+v", created[0])
		}
	})

	t.Run("DailyRuleIgnoresDay", func(t *testing.T) {

		// Arrange
		var created []entity.CreateRule
		repo := &fakeRepo{
			createRule: func(_ context.Context, in entity.CreateRule) error {
				created = append(created, in)
				return nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo, Config: adminConfig()})

		// Act
		err := uc.CreateRule(adminCtx(), CreateRuleInput{
			Title:           "Daily digest",
			MessageTemplate: "hello",
			ScheduleType:    "daily",
			ScheduleTime:    "09:00",
			ScheduleDay:     5,
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created[0].ScheduleDay != 0 {
			t.Fatalf("daily rules must normalize day to zero, got %d", created[0].ScheduleDay)
		}
	})

	t.Run("RejectsNonAdmin", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}, Config: adminConfig()})

		// Act
		err := uc.CreateRule(memberCtx(), CreateRuleInput{
			Title:           "Weekly digest",
			MessageTemplate: "x",
			ScheduleType:    "weekly",
			ScheduleTime:    "09:00",
			ScheduleDay:     3,
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeForbidden {
			t.Fatalf("expected forbidden error, got %v", err)
		}
	})

	t.Run("RejectsMissingAuth", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}, Config: adminConfig()})

		// Act
		err := uc.CreateRule(context.Background(), CreateRuleInput{})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})

	t.Run("RejectsWeeklyDayOutOfRange", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}, Config: adminConfig()})

		// Act
		err := uc.CreateRule(adminCtx(), CreateRuleInput{
			Title:           "Weekly digest",
			MessageTemplate: "x",
			ScheduleType:    "weekly",
			ScheduleTime:    "09:00",
			ScheduleDay:     0,
		})

		// Assert
		if err == nil {
			t.Fatalf("expected error for weekly rule without a day")
		}
	})

	t.Run("RejectsBadScheduleTime", func(t *testing.T) {

		// Arrange
		uc := newTestUsecase(Dependency{RepoDB: &fakeRepo{}, Config: adminConfig()})

		// Act
		err := uc.CreateRule(adminCtx(), CreateRuleInput{
			Title:           "Daily digest",
			MessageTemplate: "x",
			ScheduleType:    "daily",
			ScheduleTime:    "9am",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected error for malformed schedule time")
		}
	})
}

func TestUpdateRule(t *testing.T) {

	t.Run("UpdatesOnlyProvidedFields", func(t *testing.T) {

		// Arrange
		var got entity.UpdateRule
		repo := &fakeRepo{
			updateRule: func(_ context.Context, in entity.UpdateRule) (bool, error) {
				got = in
				return true, nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo, Config: adminConfig()})
		title := "Renamed"

		// Act
		err := uc.UpdateRule(adminCtx(), UpdateRuleInput{ID: 10, Title: &title})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title == nil || *got.Title != "Renamed" {
			t.Fatalf("expected title update, got %+v", got)
		}
		if got.ScheduleType != nil || got.ScheduleTime != nil || got.IsActive != nil {
			t.Fatalf("untouched fields must stay nil: %+v", got)
		}
	})

	t.Run("NotFound", func(t *testing.T) {

		// Arrange
		repo := &fakeRepo{
			updateRule: func(_ context.Context, _ entity.UpdateRule) (bool, error) {
				return false, nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo, Config: adminConfig()})
		active := true

		// Act
		err := uc.UpdateRule(adminCtx(), UpdateRuleInput{ID: 404, IsActive: &active})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestDeleteRule(t *testing.T) {

	t.Run("SoftDeletes", func(t *testing.T) {

		// Arrange
		var deleted []int64
		repo := &fakeRepo{
			softDeleteRule: func(_ context.Context, id int64) (bool, error) {
				deleted = append(deleted, id)
				return true, nil
			},
		}
		uc := newTestUsecase(Dependency{RepoDB: repo, Config: adminConfig()})

		// Act
		err := uc.DeleteRule(adminCtx(), DeleteRuleInput{ID: 10})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleted) != 1 || deleted[0] != 10 {
			t.Fatalf("expected rule 10 deleted, got %v", deleted)
		}
	})
}
