package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/clock"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/config"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/hash"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/idempotency"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/uid"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	ListActiveRules(ctx context.Context) ([]entity.Rule, error)
	ListRules(ctx context.Context) ([]entity.Rule, error)
	CreateRule(ctx context.Context, in entity.CreateRule) error
	UpdateRule(ctx context.Context, in entity.UpdateRule) (bool, error)
	SoftDeleteRule(ctx context.Context, id int64) (bool, error)

	CreateHistory(ctx context.Context, in entity.CreateHistory) (bool, error)
	ListHistory(ctx context.Context, userID int64, limit, offset int32) ([]entity.HistoryRecord, error)
	CountUnreadHistory(ctx context.Context, userID int64) (int64, error)
	MarkHistoryRead(ctx context.Context, userID, historyID int64) (bool, error)
	MarkHistoryClicked(ctx context.Context, userID, historyID int64) (bool, error)

	GetSettings(ctx context.Context, userID int64) (*entity.Settings, error)
	UpsertSettings(ctx context.Context, in entity.Settings) error
	ListRecipients(ctx context.Context) ([]entity.Recipient, error)

	ListSubscriptions(ctx context.Context, userID int64) ([]entity.PushSubscription, error)
	CreateSubscription(ctx context.Context, id, userID int64, endpoint, authSecret, publicKey string) error
	DeleteSubscription(ctx context.Context, userID int64, endpoint string) (bool, error)

	CountPendingTodos(ctx context.Context, userID int64) (int64, error)
	CountIdeas(ctx context.Context, userID int64) (int64, error)
	CountNotes(ctx context.Context, userID int64) (int64, error)
}

// deliveryQueue is the durable time-ordered queue between fan-out and
// processing. Enqueue with an existing key overwrites; Remove of a missing
// key is a no-op.
type deliveryQueue interface {
	Enqueue(ctx context.Context, d entity.ScheduledDelivery) error
	DueBefore(ctx context.Context, now time.Time) ([]entity.ScheduledDelivery, error)
	NextAt(ctx context.Context) (time.Time, bool, error)
	Remove(ctx context.Context, key string) error
}

type pushSender interface {
	Send(ctx context.Context, sub entity.PushSubscription, payload []byte) error
}

type jobTrigger interface {
	ScheduleProcessAt(ctx context.Context, at time.Time) error
}

type Usecase struct {
	repoDB    repoDB
	queue     deliveryQueue
	push      pushSender
	trigger   jobTrigger
	idem      idempotency.Idempotency
	signer    hash.Hash
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	streamMu  sync.RWMutex
	streams   map[int64]map[*subscriber]struct{}
}

type Dependency struct {
	RepoDB      repoDB
	Queue       deliveryQueue
	Push        pushSender
	Trigger     jobTrigger
	Idempotency idempotency.Idempotency
	Signer      hash.Hash
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		queue:     dep.Queue,
		push:      dep.Push,
		trigger:   dep.Trigger,
		idem:      dep.Idempotency,
		signer:    dep.Signer,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		streams:   make(map[int64]map[*subscriber]struct{}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
