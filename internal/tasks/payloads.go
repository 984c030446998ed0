package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep queue producers and consumers in sync.
const (
	TypeEmailResumeStatus = "email:resume_status"
)

// EmailResumeStatusPayload carries everything the worker needs to render and
// send one templated mail; it must stay self-contained because the worker does
// not read the resume back.
type EmailResumeStatusPayload struct {
	To            string            `json:"to"`
	Subject       string            `json:"subject"`
	Template      string            `json:"template"`
	Model         map[string]string `json:"model"`
	CorrelationID string            `json:"correlation_id"`
}

// NewEmailResumeStatusTask builds a resume-status mail task.
func NewEmailResumeStatusTask(p EmailResumeStatusPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailResumeStatus, payload), nil
}
