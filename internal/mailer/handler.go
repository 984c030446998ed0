package mailer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"jobhunter/internal/tasks"
)

// TaskHandler consumes resume-status email tasks. Render and send failures are
// logged and dropped: the mail channel is best-effort and a bad task must not
// be retried or affect the rest of the queue.
type TaskHandler struct {
	sender Sender
	logger *slog.Logger
}

// NewTaskHandler constructs the asynq handler for email tasks.
func NewTaskHandler(sender Sender, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{sender: sender, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *TaskHandler) ProcessTask(_ context.Context, t *asynq.Task) error {
	var payload tasks.EmailResumeStatusPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal email task payload failed", slog.Any("error", err))
		return nil
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("to", payload.To),
		slog.String("template", payload.Template),
	)

	body, err := Render(payload.Template, payload.Model)
	if err != nil {
		log.Error("render email failed", slog.Any("error", err))
		return nil
	}

	if err := h.sender.Send(payload.To, payload.Subject, body); err != nil {
		log.Error("send email failed", slog.Any("error", err))
		return nil
	}

	log.Info("resume status email sent", slog.String("subject", payload.Subject))
	return nil
}
