package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

func (s *Usecase) GetSettings(ctx context.Context) (*entity.Settings, error) {
	ctx, span := s.startSpan(ctx, "GetSettings")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.repoDB.GetSettings(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		def := entity.DefaultSettings(clm.UserID)
		return &def, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get settings", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return settings, nil
}

type UpdateSettingsInput struct {
	NotificationsEnabled  bool
	SoundEnabled          bool
	PushEnabled           bool
	BrowserEnabled        bool
	FirstReminderMinutes  int32  `validate:"gte=0,lte=1440"`
	SecondReminderMinutes int32  `validate:"gte=0,lte=1440"`
	Timezone              string `validate:"required"`
}

func (s *Usecase) UpdateSettings(ctx context.Context, in UpdateSettingsInput) error {
	ctx, span := s.startSpan(ctx, "UpdateSettings")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return goerror.NewBusiness("timezone is not a valid IANA zone", goerror.CodeInvalidInput)
	}

	settings := entity.Settings{
		UserID:                clm.UserID,
		NotificationsEnabled:  in.NotificationsEnabled,
		SoundEnabled:          in.SoundEnabled,
		PushEnabled:           in.PushEnabled,
		BrowserEnabled:        in.BrowserEnabled,
		FirstReminderMinutes:  in.FirstReminderMinutes,
		SecondReminderMinutes: in.SecondReminderMinutes,
		Timezone:              in.Timezone,
	}

	if err := s.repoDB.UpsertSettings(ctx, settings); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert settings", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
