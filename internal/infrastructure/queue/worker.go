package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
)

// emailVerificationPayload matches the JSON enqueued by TaskEnqueuer.EnqueueSendEmailVerification.
type emailVerificationPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	VerifyURL string `json:"verify_url"`
}

// webhookPayload matches the JSON enqueued by TaskEnqueuer.EnqueueWebhook.
type webhookPayload struct {
	Event   string           `json:"event"`
	Payload ports.AuditEvent `json:"payload"`
}

// Worker runs Asynq task handlers (verification email delivery, webhooks).
type Worker struct {
	srv     *asynq.Server
	mux     *asynq.ServeMux
	deliver ports.WebhookEmitter
	log     zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Queued audit
// events are handed to deliver (may be nil to drop them). Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, deliver ports.WebhookEmitter, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, deliver: deliver, log: log}
	mux.HandleFunc(TypeSendEmailVerification, w.handleSendEmailVerification)
	mux.HandleFunc(TypeWebhook, w.handleWebhook)
	return w
}

func (w *Worker) handleSendEmailVerification(ctx context.Context, t *asynq.Task) error {
	var p emailVerificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("email verification task payload invalid")
		return err
	}
	// Dev: log the link; production would send email via SMTP/sendgrid etc.
	w.log.Info().
		Str("user_id", p.UserID).
		Str("email", p.Email).
		Str("verify_url", p.VerifyURL).
		Msg("verification email (log only; configure SMTP for real email)")
	return nil
}

func (w *Worker) handleWebhook(ctx context.Context, t *asynq.Task) error {
	var p webhookPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("webhook task payload invalid")
		return err
	}
	if w.deliver == nil {
		w.log.Debug().Str("event", p.Event).Msg("webhook delivery not configured; dropping event")
		return nil
	}
	if err := w.deliver.Emit(ctx, p.Payload); err != nil {
		w.log.Warn().Err(err).Str("event", p.Event).Msg("webhook delivery failed")
		return err
	}
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
