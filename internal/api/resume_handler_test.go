package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/api/middleware"
	"jobhunter/internal/resume"
)

type transitionCall struct {
	resumeID uint
	actor    resume.Actor
	req      resume.TransitionRequest
}

type fakeTransitioner struct {
	err    error
	result resume.UpdateResult
	calls  []transitionCall
}

func (f *fakeTransitioner) Transition(_ context.Context, resumeID uint, actor resume.Actor, req resume.TransitionRequest) (resume.UpdateResult, error) {
	f.calls = append(f.calls, transitionCall{resumeID: resumeID, actor: actor, req: req})
	if f.err != nil {
		return resume.UpdateResult{}, f.err
	}
	return f.result, nil
}

func injectActor(actor resume.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	}
}

func resumeStatusEngine(service statusTransitioner, actor *resume.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/v1/resumes")
	if actor != nil {
		group.Use(injectActor(*actor))
	}
	group.PUT("/status", NewResumeHandler(service).UpdateStatus)
	return r
}

func putStatus(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/v1/resumes/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateStatusSuccess(t *testing.T) {
	updatedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	service := &fakeTransitioner{result: resume.UpdateResult{UpdatedAt: updatedAt, UpdatedBy: "hr@fpt.vn"}}
	actor := resume.Actor{UserID: 51, Email: "hr@fpt.vn", Role: "HR"}
	r := resumeStatusEngine(service, &actor)

	w := putStatus(t, r, `{"id":42,"status":"APPROVED","interviewAt":"2025-05-01T10:00:00Z","interviewLocation":"Room 1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		UpdatedAt time.Time `json:"updatedAt"`
		UpdatedBy string    `json:"updatedBy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UpdatedBy != "hr@fpt.vn" || !resp.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("response = %+v", resp)
	}

	if len(service.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(service.calls))
	}
	call := service.calls[0]
	if call.resumeID != 42 || call.actor.Email != "hr@fpt.vn" {
		t.Fatalf("call = %+v", call)
	}
	if call.req.Status != resume.StatusApproved || call.req.InterviewLocation != "Room 1" {
		t.Fatalf("request = %+v", call.req)
	}
}

func TestUpdateStatusErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", resume.ErrNotFound, http.StatusNotFound},
		{"forbidden", resume.ErrForbidden, http.StatusForbidden},
		{"invalid status", resume.ErrInvalidStatus, http.StatusBadRequest},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	actor := resume.Actor{UserID: 1, Email: "admin@jobhunter.vn", Role: "SUPER_ADMIN"}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := resumeStatusEngine(&fakeTransitioner{err: tc.err}, &actor)
			w := putStatus(t, r, `{"id":1,"status":"REVIEWING"}`)
			if w.Code != tc.code {
				t.Fatalf("status = %d, want %d", w.Code, tc.code)
			}
		})
	}
}

func TestUpdateStatusRejectsBadInput(t *testing.T) {
	actor := resume.Actor{UserID: 1, Email: "admin@jobhunter.vn", Role: "SUPER_ADMIN"}
	service := &fakeTransitioner{}
	r := resumeStatusEngine(service, &actor)

	for _, body := range []string{
		`{"id":1}`,                        // missing status
		`{"status":"APPROVED"}`,           // missing id
		`{"id":1,"status":"ARCHIVED"}`,    // unknown status value
		`{"id":"not a number","status":"APPROVED"}`, // type mismatch
		`not json`,
	} {
		w := putStatus(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
	if len(service.calls) != 0 {
		t.Fatalf("state machine must not be reached on bad input")
	}
}

func TestUpdateStatusWithoutActor(t *testing.T) {
	r := resumeStatusEngine(&fakeTransitioner{}, nil)
	w := putStatus(t, r, `{"id":1,"status":"APPROVED"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
