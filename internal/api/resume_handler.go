package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/api/middleware"
	"jobhunter/internal/resume"
)

// statusTransitioner is the slice of the state machine this handler consumes.
type statusTransitioner interface {
	Transition(ctx context.Context, resumeID uint, actor resume.Actor, req resume.TransitionRequest) (resume.UpdateResult, error)
}

// ResumeHandler exposes the resume status transition entry point.
type ResumeHandler struct {
	service statusTransitioner
}

// NewResumeHandler constructs the handler around the state machine.
func NewResumeHandler(service statusTransitioner) *ResumeHandler {
	return &ResumeHandler{service: service}
}

type updateResumeStatusRequest struct {
	ID                uint   `json:"id" binding:"required"`
	Status            string `json:"status" binding:"required"`
	InterviewAt       string `json:"interviewAt"`
	InterviewLocation string `json:"interviewLocation"`
	InterviewNote     string `json:"interviewNote"`
	RejectReason      string `json:"rejectReason"`
}

type updateResumeStatusResponse struct {
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// UpdateStatus applies a status transition. A successful transition always
// returns success regardless of what the notification fan-out did; only
// validation, authorization and not-found failures surface here.
func (h *ResumeHandler) UpdateStatus(c *gin.Context) {
	var req updateResumeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	status, err := resume.ParseStatus(req.Status)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Transition(c.Request.Context(), req.ID, actor, resume.TransitionRequest{
		Status:            status,
		InterviewAt:       req.InterviewAt,
		InterviewLocation: req.InterviewLocation,
		InterviewNote:     req.InterviewNote,
		RejectReason:      req.RejectReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrNotFound):
			NotFound(c, "resume not found")
		case errors.Is(err, resume.ErrForbidden):
			Forbidden(c, "not allowed to modify this resume")
		case errors.Is(err, resume.ErrInvalidStatus):
			BadRequest(c, err.Error())
		default:
			middleware.LoggerFromContext(c).Error("transition failed", "error", err)
			Internal(c, "failed to update resume status")
		}
		return
	}

	c.JSON(http.StatusOK, updateResumeStatusResponse{
		UpdatedAt: result.UpdatedAt,
		UpdatedBy: result.UpdatedBy,
	})
}
