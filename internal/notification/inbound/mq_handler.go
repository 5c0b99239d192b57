package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/usecase"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/messaging"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/uid"
	"github.com/mxn2020/task-flow-sub000/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) TodoDeadlineNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "TodoDeadlineNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: todo deadline notification", "msg_body", string(body))

	var payload event.TodoDeadlineMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of todo deadline notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.EnqueueDeadline(ctx, usecase.EnqueueDeadlineInput{
		TodoID:   payload.TodoID,
		UserID:   payload.UserID,
		Title:    payload.Title,
		Deadline: time.UnixMilli(payload.Deadline).UTC(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume todo deadline", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
