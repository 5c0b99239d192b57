package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// Config holds the VAPID identity used to sign Web Push requests.
type Config struct {
	// Subscriber is the contact address claimed in the VAPID JWT,
	// e.g. "mailto:ops@taskflow.app".
	Subscriber      string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	// TTL is how long the push service may retain an undelivered message.
	TTL time.Duration
	// Timeout bounds a single send.
	Timeout time.Duration
}

// Sender delivers one encrypted Web Push message per subscription.
type Sender struct {
	cfg    Config
	client *http.Client
	ins    instrument.Instrumentation
}

func New(cfg Config, ins instrument.Instrumentation) *Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		ins:    ins,
	}
}

// Send pushes the payload to a single subscription. It returns
// ErrSubscriptionGone for dead endpoints and a transport error otherwise;
// the caller is responsible for isolating failures across subscriptions.
func (s *Sender) Send(ctx context.Context, sub entity.PushSubscription, payload []byte) error {
	ctx, span := s.ins.Tracer("notification.outbound.push").Start(ctx, "Send")
	defer span.End()

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.AuthSecret,
			P256dh: sub.PublicKey,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             int(s.cfg.TTL.Seconds()),
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("push: send to subscription %d: %w", sub.ID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: subscription %d endpoint returned %d", entity.ErrSubscriptionGone, sub.ID, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		err := fmt.Errorf("push: subscription %d endpoint returned %d", sub.ID, resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
