package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mxn2020/task-flow-sub000/internal/notification/inbound"
	"github.com/mxn2020/task-flow-sub000/internal/notification/outbound/db"
	"github.com/mxn2020/task-flow-sub000/internal/notification/outbound/push"
	"github.com/mxn2020/task-flow-sub000/internal/notification/outbound/queue"
	"github.com/mxn2020/task-flow-sub000/internal/notification/outbound/trigger"
	"github.com/mxn2020/task-flow-sub000/internal/notification/usecase"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/clock"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/config"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goroutine"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/hash"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/idempotency"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/messaging"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/router"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/uid"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	Redis       *redis.Client
	Idempotency idempotency.Idempotency
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	HMAC        hash.Hash
}

func New(dep Dependency) error {
	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	deliveryQueue := queue.New(dep.Redis, dep.Instrument)
	pushSender := push.New(push.Config{
		Subscriber:      dep.Config.GetString("notification.push.subscriber"),
		VAPIDPublicKey:  dep.Config.GetString("notification.push.vapid_public_key"),
		VAPIDPrivateKey: dep.Config.GetString("notification.push.vapid_private_key"),
		TTL:             dep.Config.GetSecond("notification.push.ttl_seconds"),
		Timeout:         dep.Config.GetSecond("notification.push.timeout_seconds"),
	}, dep.Instrument)
	jobTrigger := trigger.New(trigger.Config{
		Endpoint:    dep.Config.GetString("notification.trigger.endpoint"),
		CallbackURL: dep.Config.GetString("notification.trigger.callback_url"),
		Timeout:     dep.Config.GetSecond("notification.trigger.timeout_seconds"),
	}, dep.HMAC, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		RepoDB:      dbNotif,
		Queue:       deliveryQueue,
		Push:        pushSender,
		Trigger:     jobTrigger,
		Idempotency: dep.Idempotency,
		Signer:      dep.HMAC,
		Config:      dep.Config,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
