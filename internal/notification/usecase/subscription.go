package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
)

type SubscriptionRegisterInput struct {
	Endpoint   string `validate:"required,url"`
	AuthSecret string `validate:"required"`
	PublicKey  string `validate:"required"`
}

// SubscriptionRegister stores a browser push subscription. Registering an
// endpoint that already exists moves it to the calling user, so a shared
// browser profile follows whoever logged in last.
func (s *Usecase) SubscriptionRegister(ctx context.Context, in SubscriptionRegisterInput) error {
	ctx, span := s.startSpan(ctx, "SubscriptionRegister")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	in.Endpoint = strings.TrimSpace(in.Endpoint)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.CreateSubscription(ctx, s.uid.Generate(), clm.UserID, in.Endpoint, in.AuthSecret, in.PublicKey); err != nil {
		slog.ErrorContext(ctx, "failed to repo create push subscription", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type SubscriptionRemoveInput struct {
	Endpoint string `validate:"required,url"`
}

func (s *Usecase) SubscriptionRemove(ctx context.Context, in SubscriptionRemoveInput) error {
	ctx, span := s.startSpan(ctx, "SubscriptionRemove")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	in.Endpoint = strings.TrimSpace(in.Endpoint)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	deleted, err := s.repoDB.DeleteSubscription(ctx, clm.UserID, in.Endpoint)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete push subscription", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}
	if !deleted {
		return goerror.NewBusiness("push subscription not found", goerror.CodeNotFound)
	}

	return nil
}
