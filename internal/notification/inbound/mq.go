package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/config"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/goroutine"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/messaging"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/uid"
	"github.com/mxn2020/task-flow-sub000/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		nsqConsumerName   string // for nsq
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.TodoDeadlineConsumerNotification,
			topic:             event.TodoDeadlineDestination,
			nsqConsumerName:   event.TodoDeadlineConsumerNotification,
			natsConsumerName:  event.TodoDeadlineConsumerNotification,
			kafkaConsumerName: event.TodoDeadlineConsumerNotification,
			handler:           mqHandler.TodoDeadlineNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
