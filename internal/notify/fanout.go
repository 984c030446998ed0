package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"jobhunter/internal/database"
	"jobhunter/internal/metrics"
	"jobhunter/internal/resume"
)

// NotificationCreator is the durable channel: append one record per status change.
type NotificationCreator interface {
	Create(ctx context.Context, userID uint, title, content, category string) (*database.Notification, error)
}

// LivePusher is the best-effort real-time channel.
type LivePusher interface {
	Send(userID uint, ev Event)
}

// EmailDispatcher hands a templated mail off for asynchronous delivery.
// Implementations never block on the actual send and never report failures back.
type EmailDispatcher interface {
	SendTemplated(to, subject, templateName string, model map[string]string)
}

const (
	notificationTitle = "Trạng thái hồ sơ"

	// TemplateResumeStatus is the mail template rendered by the worker.
	TemplateResumeStatus = "resume-status"
)

// StatusEvent is the structured payload pushed on live channels. Optional
// fields are present only when non-empty.
type StatusEvent struct {
	ResumeID          uint   `json:"resumeId"`
	Status            string `json:"status"`
	StatusText        string `json:"statusText"`
	Job               string `json:"job"`
	Company           string `json:"company"`
	CreatedAt         string `json:"createdAt"`
	InterviewAt       string `json:"interviewAt,omitempty"`
	InterviewLocation string `json:"interviewLocation,omitempty"`
	InterviewNote     string `json:"interviewNote,omitempty"`
	RejectReason      string `json:"rejectReason,omitempty"`
}

// Fanout propagates one status change to the three delivery channels. The
// channels are independent failure domains: the status write has already
// committed when Dispatch runs, so nothing here is surfaced to the caller,
// rolled back, or retried.
type Fanout struct {
	store  NotificationCreator
	live   LivePusher
	mail   EmailDispatcher
	logger *slog.Logger
}

// NewFanout wires the three channels.
func NewFanout(store NotificationCreator, live LivePusher, mail EmailDispatcher, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{store: store, live: live, mail: mail, logger: logger}
}

// Dispatch implements resume.Notifier. Callers only invoke it when
// oldStatus != newStatus; rec arrives with User, Job and Job.Company preloaded.
func (f *Fanout) Dispatch(ctx context.Context, rec *database.Resume, oldStatus, newStatus resume.Status) {
	jobName := rec.Job.Name
	companyName := rec.Job.Company.Name
	candidateName := rec.User.Name
	label := newStatus.Label()

	log := f.logger.With(
		slog.Uint64("resume_id", uint64(rec.ID)),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(newStatus)),
	)

	// 1) Durable record. Detached from request cancellation: the status change
	// is authoritative even when the caller has gone away.
	content := plainContent(rec, newStatus, jobName, companyName, label)
	if _, err := f.store.Create(context.WithoutCancel(ctx), rec.UserID, notificationTitle, content, label); err != nil {
		log.Error("create notification record failed", slog.Any("error", err))
		metrics.ObserveDelivery(metrics.ChannelRecord, metrics.OutcomeError)
	} else {
		metrics.ObserveDelivery(metrics.ChannelRecord, metrics.OutcomeOK)
	}

	// 2) Live push. Silent no-op for disconnected users.
	f.live.Send(rec.UserID, Event{Name: EventResumeStatus, Data: f.statusEvent(rec, newStatus, jobName, companyName, label)})
	metrics.ObserveDelivery(metrics.ChannelLive, metrics.OutcomeOK)

	// 3) Email, only for the two final states.
	if newStatus == resume.StatusApproved || newStatus == resume.StatusRejected {
		subject := "[JobHunter] Kết quả hồ sơ - " + jobName
		if newStatus == resume.StatusApproved {
			subject = "[JobHunter] Chấp nhận hồ sơ - " + jobName
		}

		model := map[string]string{
			"name":              candidateName,
			"status":            string(newStatus),
			"statusText":        label,
			"jobName":           jobName,
			"companyName":       companyName,
			"interviewAt":       formatVN(rec.InterviewAt),
			"interviewLocation": rec.InterviewLocation,
			"interviewNote":     rec.InterviewNote,
			"rejectReason":      rec.RejectReason,
		}
		f.mail.SendTemplated(rec.Email, subject, TemplateResumeStatus, model)
		metrics.ObserveDelivery(metrics.ChannelEmail, metrics.OutcomeOK)
	}
}

func (f *Fanout) statusEvent(rec *database.Resume, newStatus resume.Status, jobName, companyName, label string) StatusEvent {
	ev := StatusEvent{
		ResumeID:          rec.ID,
		Status:            string(newStatus),
		StatusText:        label,
		Job:               jobName,
		Company:           companyName,
		CreatedAt:         time.Now().UTC().Format(time.RFC3339),
		InterviewLocation: rec.InterviewLocation,
		InterviewNote:     rec.InterviewNote,
		RejectReason:      rec.RejectReason,
	}
	if rec.InterviewAt != nil {
		ev.InterviewAt = rec.InterviewAt.UTC().Format(time.RFC3339)
	}
	return ev
}

// plainContent renders the multi-line text stored on the notification record.
func plainContent(rec *database.Resume, newStatus resume.Status, jobName, companyName, label string) string {
	var b strings.Builder
	b.WriteString("Vị trí: " + jobName + "\n")
	b.WriteString("Công ty: " + companyName + "\n")
	b.WriteString("Trạng thái: " + label + "\n")

	switch newStatus {
	case resume.StatusApproved:
		if ivTime := formatVN(rec.InterviewAt); ivTime != "" {
			b.WriteString("Thời gian phỏng vấn: " + ivTime + "\n")
		}
		if rec.InterviewLocation != "" {
			b.WriteString("Địa điểm/Link: " + rec.InterviewLocation + "\n")
		}
		if rec.InterviewNote != "" {
			b.WriteString("Ghi chú: " + rec.InterviewNote + "\n")
		}
	case resume.StatusRejected:
		if rec.RejectReason != "" {
			b.WriteString("Lý do: " + rec.RejectReason + "\n")
		}
	}

	return b.String()
}

var vnLocation = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
})

// formatVN renders an interview time the way candidates read it.
func formatVN(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(vnLocation()).Format("02/01/2006 15:04")
}
