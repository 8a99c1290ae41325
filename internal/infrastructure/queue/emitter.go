package queue

import (
	"context"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
)

// AsyncEmitter queues audit events for background delivery instead of
// posting them on the request path. The worker hands each event to its
// configured delivery emitter.
type AsyncEmitter struct {
	enqueuer ports.TaskEnqueuer
}

func NewAsyncEmitter(enqueuer ports.TaskEnqueuer) *AsyncEmitter {
	return &AsyncEmitter{enqueuer: enqueuer}
}

func (e *AsyncEmitter) Emit(ctx context.Context, event ports.AuditEvent) error {
	return e.enqueuer.EnqueueWebhook(ctx, event.Event, event)
}

var _ ports.WebhookEmitter = (*AsyncEmitter)(nil)
