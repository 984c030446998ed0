package resume

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"jobhunter/internal/database"
)

var (
	// ErrNotFound means the resume id does not resolve to a record.
	ErrNotFound = errors.New("resume not found")
	// ErrForbidden means the actor is not scoped to the resume's owning company.
	ErrForbidden = errors.New("not allowed to modify this resume")
	// ErrInvalidStatus means the target status is outside the known value set.
	ErrInvalidStatus = errors.New("invalid resume status")
)

// Notifier receives the already-persisted resume after a real status change.
// The record arrives with User, Job and Job.Company preloaded.
type Notifier interface {
	Dispatch(ctx context.Context, rec *database.Resume, oldStatus, newStatus Status)
}

// TransitionRequest carries the target status and the destination-specific fields.
// InterviewAt is an optional RFC 3339 timestamp; an unparsable value is treated
// as absent rather than rejected.
type TransitionRequest struct {
	Status            Status
	InterviewAt       string
	InterviewLocation string
	InterviewNote     string
	RejectReason      string
}

// UpdateResult is the persisted record's update metadata returned to the caller.
type UpdateResult struct {
	UpdatedAt time.Time
	UpdatedBy string
}

// Service is the resume state machine. It owns every mutation of a resume's
// status and the decision whether notification fan-out fires.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs the state machine.
func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Transition validates and applies a status change.
//
// The field policy depends on the destination state only: APPROVED sets the
// interview fields and clears the reject reason, REJECTED sets the reason and
// clears the interview fields, PENDING and REVIEWING clear all four. The
// update is always persisted; fan-out fires only when the status actually
// changed. There is deliberately no transition-graph restriction, so a
// corrective move such as REJECTED back to REVIEWING stays legal.
func (s *Service) Transition(ctx context.Context, resumeID uint, actor Actor, req TransitionRequest) (UpdateResult, error) {
	if _, err := ParseStatus(string(req.Status)); err != nil {
		return UpdateResult{}, err
	}

	var rec database.Resume
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Job").
		Preload("Job.Company").
		First(&rec, resumeID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return UpdateResult{}, ErrNotFound
	case err != nil:
		return UpdateResult{}, err
	}

	if !actor.mayReview(rec.Job.CompanyID) {
		return UpdateResult{}, ErrForbidden
	}

	oldStatus := Status(rec.Status)
	newStatus := req.Status

	switch newStatus {
	case StatusApproved:
		rec.InterviewAt = parseInterviewAt(req.InterviewAt)
		rec.InterviewLocation = req.InterviewLocation
		rec.InterviewNote = req.InterviewNote
		rec.RejectReason = ""
	case StatusRejected:
		rec.RejectReason = req.RejectReason
		rec.InterviewAt = nil
		rec.InterviewLocation = ""
		rec.InterviewNote = ""
	default:
		rec.InterviewAt = nil
		rec.InterviewLocation = ""
		rec.InterviewNote = ""
		rec.RejectReason = ""
	}
	rec.Status = string(newStatus)
	rec.UpdatedBy = actor.Email

	// Map-based update so cleared fields are written back as well.
	updates := map[string]any{
		"status":             rec.Status,
		"interview_at":       rec.InterviewAt,
		"interview_location": rec.InterviewLocation,
		"interview_note":     rec.InterviewNote,
		"reject_reason":      rec.RejectReason,
		"updated_by":         rec.UpdatedBy,
	}
	if err := s.db.WithContext(ctx).Model(&rec).Updates(updates).Error; err != nil {
		return UpdateResult{}, err
	}

	if oldStatus != newStatus && s.notifier != nil {
		s.notifier.Dispatch(ctx, &rec, oldStatus, newStatus)
	}

	return UpdateResult{UpdatedAt: rec.UpdatedAt, UpdatedBy: rec.UpdatedBy}, nil
}

// parseInterviewAt tolerates missing or malformed timestamps by leaving the
// field unset; a bad timestamp must not abort an otherwise valid approval.
func parseInterviewAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
