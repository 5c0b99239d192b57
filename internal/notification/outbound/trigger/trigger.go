// Package trigger schedules future invocations of the internal processing
// endpoint through an external job scheduler. The engine never sleeps on its
// own; every time it learns about a future delivery it asks the scheduler to
// call back at that instant.
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/hash"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

// SignatureHeader carries the HMAC of the callback body. The processing
// endpoint rejects requests whose signature does not match.
const SignatureHeader = "X-TaskFlow-Signature"

type Config struct {
	// Endpoint is the scheduler's job-creation API.
	Endpoint string
	// CallbackURL is the absolute URL of this service's processing endpoint.
	CallbackURL string
	Timeout     time.Duration
}

// Client asks the scheduler to invoke the processing endpoint at a given
// instant. The callback body is pre-signed so the scheduler itself never
// needs to hold the shared secret.
type Client struct {
	cfg    Config
	signer hash.Hash
	client *http.Client
	ins    instrument.Instrumentation
}

func New(cfg Config, signer hash.Hash, ins instrument.Instrumentation) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		cfg:    cfg,
		signer: signer,
		client: &http.Client{Timeout: cfg.Timeout},
		ins:    ins,
	}
}

type callbackBody struct {
	ScheduledFor int64 `json:"scheduled_for"`
}

type jobRequest struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	NotBefore string            `json:"not_before"`
	Body      json.RawMessage   `json:"body"`
	Headers   map[string]string `json:"headers"`
}

// ScheduleProcessAt registers a one-shot job that POSTs to the processing
// endpoint at the given instant. Scheduling the same instant twice is
// harmless; the processing endpoint only acts on deliveries that are due.
func (c *Client) ScheduleProcessAt(ctx context.Context, at time.Time) error {
	ctx, span := c.ins.Tracer("notification.outbound.trigger").Start(ctx, "ScheduleProcessAt")
	defer span.End()

	body, err := json.Marshal(callbackBody{ScheduledFor: at.UnixMilli()})
	if err != nil {
		return fmt.Errorf("trigger: marshal callback body: %w", err)
	}

	sig, err := c.signer.Hash(string(body))
	if err != nil {
		return fmt.Errorf("trigger: sign callback body: %w", err)
	}

	job, err := json.Marshal(jobRequest{
		URL:       c.cfg.CallbackURL,
		Method:    http.MethodPost,
		NotBefore: at.UTC().Format(time.RFC3339),
		Body:      body,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			SignatureHeader: string(sig),
		},
	})
	if err != nil {
		return fmt.Errorf("trigger: marshal job: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(job))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("trigger: scheduler returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("trigger: scheduler returned %d", resp.StatusCode)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
