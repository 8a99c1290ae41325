package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
)

type captureEnqueuer struct {
	events   []string
	payloads []interface{}
}

func (c *captureEnqueuer) EnqueueSendEmailVerification(context.Context, string, string, string) error {
	return nil
}

func (c *captureEnqueuer) EnqueueWebhook(_ context.Context, event string, payload interface{}) error {
	c.events = append(c.events, event)
	c.payloads = append(c.payloads, payload)
	return nil
}

type captureEmitter struct {
	events []ports.AuditEvent
}

func (c *captureEmitter) Emit(_ context.Context, event ports.AuditEvent) error {
	c.events = append(c.events, event)
	return nil
}

func TestAsyncEmitterQueuesAuditEvents(t *testing.T) {
	enq := &captureEnqueuer{}
	emitter := NewAsyncEmitter(enq)

	event := ports.AuditEvent{Event: "user.signup", UserID: "uid-1", IP: "10.0.0.1", Success: true}
	require.NoError(t, emitter.Emit(context.Background(), event))
	require.Equal(t, []string{"user.signup"}, enq.events)
	require.Equal(t, event, enq.payloads[0])
}

func TestWorkerDeliversQueuedAuditEvent(t *testing.T) {
	capture := &captureEmitter{}
	w := &Worker{deliver: capture, log: zerolog.Nop()}

	event := ports.AuditEvent{Event: "user.login", UserID: "uid-2", Success: false, Err: "invalid credentials"}
	body, err := json.Marshal(webhookPayload{Event: event.Event, Payload: event})
	require.NoError(t, err)

	require.NoError(t, w.handleWebhook(context.Background(), asynq.NewTask(TypeWebhook, body)))
	require.Equal(t, []ports.AuditEvent{event}, capture.events)
}

func TestWorkerDropsAuditEventWithoutDelivery(t *testing.T) {
	w := &Worker{log: zerolog.Nop()}
	body, err := json.Marshal(webhookPayload{Event: "user.signup"})
	require.NoError(t, err)
	require.NoError(t, w.handleWebhook(context.Background(), asynq.NewTask(TypeWebhook, body)))
}
