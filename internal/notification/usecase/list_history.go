package usecase

import (
	"context"
	"log/slog"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

type ListInboxInput struct {
	Limit  int32 `validate:"omitempty,gte=1,lte=100"`
	Offset int32 `validate:"omitempty,gte=0"`
}

func (s *Usecase) ListInbox(ctx context.Context, in ListInboxInput) (_ []entity.HistoryRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListInbox")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if in.Limit == 0 {
		in.Limit = 20
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	records, err := s.repoDB.ListHistory(ctx, clm.UserID, in.Limit, in.Offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list history", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return records, nil
}
