package inbound

import (
	"context"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/notification/usecase"
)

type ucEngine interface {
	ExpandRules(ctx context.Context, in usecase.ExpandRulesInput) (*usecase.ExpandRulesOutput, error)
	ProcessDue(ctx context.Context, in usecase.ProcessDueInput) (*usecase.ProcessDueOutput, error)
	EnqueueDeadline(ctx context.Context, in usecase.EnqueueDeadlineInput) error
}

type ucStream interface {
	StreamNotifications(ctx context.Context, userID int64) <-chan usecase.StreamEvent
}

type ucAdmin interface {
	CreateRule(ctx context.Context, in usecase.CreateRuleInput) error
	ListRules(ctx context.Context) ([]entity.Rule, error)
	UpdateRule(ctx context.Context, in usecase.UpdateRuleInput) error
	DeleteRule(ctx context.Context, in usecase.DeleteRuleInput) error
}

type uc interface {
	ucEngine
	ucStream
	ucAdmin

	ListInbox(ctx context.Context, in usecase.ListInboxInput) ([]entity.HistoryRecord, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkInboxRead(ctx context.Context, in usecase.MarkInboxReadInput) error
	MarkInboxClicked(ctx context.Context, in usecase.MarkInboxClickedInput) error
	GetSettings(ctx context.Context) (*entity.Settings, error)
	UpdateSettings(ctx context.Context, in usecase.UpdateSettingsInput) error
	SubscriptionRegister(ctx context.Context, in usecase.SubscriptionRegisterInput) error
	SubscriptionRemove(ctx context.Context, in usecase.SubscriptionRemoveInput) error
}
