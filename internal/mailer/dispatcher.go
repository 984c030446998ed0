package mailer

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"jobhunter/internal/tasks"
)

// Dispatcher enqueues templated mails onto the asynq queue consumed by
// cmd/worker. Sending is fire-and-forget: enqueue failures are logged and
// swallowed, and tasks carry MaxRetry(0) so a failed send is never replayed.
type Dispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewDispatcher constructs a queue-backed dispatcher.
func NewDispatcher(client *asynq.Client, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{client: client, logger: logger}
}

// SendTemplated implements notify.EmailDispatcher.
func (d *Dispatcher) SendTemplated(to, subject, templateName string, model map[string]string) {
	task, err := tasks.NewEmailResumeStatusTask(tasks.EmailResumeStatusPayload{
		To:            to,
		Subject:       subject,
		Template:      templateName,
		Model:         model,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		d.logger.Error("build email task failed", slog.Any("error", err))
		return
	}

	if _, err := d.client.Enqueue(task, asynq.MaxRetry(0)); err != nil {
		d.logger.Error("enqueue email task failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Any("error", err),
		)
	}
}
