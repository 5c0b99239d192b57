package usecase

import (
	"context"
	"log/slog"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

func (s *Usecase) CountUnread(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "CountUnread")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	count, err := s.repoDB.CountUnreadHistory(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count unread history", "user_id", clm.UserID, "error", err)
		return 0, goerror.NewServer(err)
	}

	return count, nil
}

type MarkInboxReadInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) MarkInboxRead(ctx context.Context, in MarkInboxReadInput) error {
	ctx, span := s.startSpan(ctx, "MarkInboxRead")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	updated, err := s.repoDB.MarkHistoryRead(ctx, clm.UserID, in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark history read", "user_id", clm.UserID, "history_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !updated {
		return goerror.NewBusiness("notification not found or already read", goerror.CodeNotFound)
	}

	return nil
}

type MarkInboxClickedInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) MarkInboxClicked(ctx context.Context, in MarkInboxClickedInput) error {
	ctx, span := s.startSpan(ctx, "MarkInboxClicked")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	updated, err := s.repoDB.MarkHistoryClicked(ctx, clm.UserID, in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark history clicked", "user_id", clm.UserID, "history_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if !updated {
		return goerror.NewBusiness("notification not found", goerror.CodeNotFound)
	}

	return nil
}
