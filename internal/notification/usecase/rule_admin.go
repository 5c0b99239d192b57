package usecase

import (
	"context"
	"log/slog"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

type CreateRuleInput struct {
	Title           string `validate:"required,max=200"`
	MessageTemplate string `validate:"required,max=2000"`
	ScheduleType    string `validate:"required,oneof=daily weekly monthly"`
	ScheduleTime    string `validate:"required"`
	ScheduleDay     int16  `validate:"gte=0,lte=31"`
	IsActive        bool
}

func (s *Usecase) CreateRule(ctx context.Context, in CreateRuleInput) error {
	ctx, span := s.startSpan(ctx, "CreateRule")
	defer span.End()

	clm, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	scheduleType, scheduleDay, err := validateSchedule(in.ScheduleType, in.ScheduleTime, in.ScheduleDay)
	if err != nil {
		return err
	}

	rule := entity.CreateRule{
		ID:              s.uid.Generate(),
		Title:           in.Title,
		MessageTemplate: in.MessageTemplate,
		ScheduleType:    scheduleType,
		ScheduleTime:    in.ScheduleTime,
		ScheduleDay:     scheduleDay,
		IsActive:        in.IsActive,
		CreatedBy:       clm.UserID,
	}

	if err := s.repoDB.CreateRule(ctx, rule); err != nil {
		slog.ErrorContext(ctx, "failed to repo create rule", "created_by", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) ListRules(ctx context.Context) ([]entity.Rule, error) {
	ctx, span := s.startSpan(ctx, "ListRules")
	defer span.End()

	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	rules, err := s.repoDB.ListRules(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list rules", "error", err)
		return nil, goerror.NewServer(err)
	}

	return rules, nil
}

type UpdateRuleInput struct {
	ID              int64 `validate:"required,gt=0"`
	Title           *string
	MessageTemplate *string
	ScheduleType    *string `validate:"omitempty,oneof=daily weekly monthly"`
	ScheduleTime    *string
	ScheduleDay     *int16 `validate:"omitempty,gte=0,lte=31"`
	IsActive        *bool
}

func (s *Usecase) UpdateRule(ctx context.Context, in UpdateRuleInput) error {
	ctx, span := s.startSpan(ctx, "UpdateRule")
	defer span.End()

	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	update := entity.UpdateRule{
		ID:              in.ID,
		Title:           in.Title,
		MessageTemplate: in.MessageTemplate,
		ScheduleTime:    in.ScheduleTime,
		ScheduleDay:     in.ScheduleDay,
		IsActive:        in.IsActive,
	}

	if in.ScheduleTime != nil {
		if _, _, err := parseClockTime(*in.ScheduleTime); err != nil {
			return goerror.NewBusiness("schedule time must be HH:MM", goerror.CodeInvalidInput)
		}
	}
	if in.ScheduleType != nil {
		scheduleType := entity.ScheduleTypeFromString(*in.ScheduleType)
		update.ScheduleType = &scheduleType
	}

	updated, err := s.repoDB.UpdateRule(ctx, update)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update rule", "rule_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !updated {
		return goerror.NewBusiness("rule not found", goerror.CodeNotFound)
	}

	return nil
}

type DeleteRuleInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) DeleteRule(ctx context.Context, in DeleteRuleInput) error {
	ctx, span := s.startSpan(ctx, "DeleteRule")
	defer span.End()

	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	deleted, err := s.repoDB.SoftDeleteRule(ctx, in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete rule", "rule_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !deleted {
		return goerror.NewBusiness("rule not found", goerror.CodeNotFound)
	}

	return nil
}

// validateSchedule checks the schedule fields together: the day range only
// makes sense relative to the schedule type.
func validateSchedule(rawType, rawTime string, day int16) (entity.ScheduleType, int16, error) {
	scheduleType := entity.ScheduleTypeFromString(rawType)
	if scheduleType == entity.ScheduleTypeUnknown {
		return 0, 0, goerror.NewBusiness("schedule type is not supported", goerror.CodeInvalidInput)
	}

	if _, _, err := parseClockTime(rawTime); err != nil {
		return 0, 0, goerror.NewBusiness("schedule time must be HH:MM", goerror.CodeInvalidInput)
	}

	switch scheduleType {
	case entity.ScheduleTypeDaily:
		day = 0
	case entity.ScheduleTypeWeekly:
		if day < 1 || day > 7 {
			return 0, 0, goerror.NewBusiness("weekly rules need a day between 1 and 7", goerror.CodeInvalidInput)
		}
	case entity.ScheduleTypeMonthly:
		if day < 1 || day > 31 {
			return 0, 0, goerror.NewBusiness("monthly rules need a day between 1 and 31", goerror.CodeInvalidInput)
		}
	}

	return scheduleType, day, nil
}
