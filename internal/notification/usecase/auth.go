package usecase

import (
	"context"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/goerror"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/jwt"
	"github.com/samber/lo"
)

func (s *Usecase) requireAuth(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

func (s *Usecase) requireAdmin(ctx context.Context) (*jwt.Claims, error) {
	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(s.cfg.GetArray("notification.admin_emails"), clm.UserEmail) {
		return nil, goerror.NewBusiness("admin access required", goerror.CodeForbidden)
	}

	return clm, nil
}
