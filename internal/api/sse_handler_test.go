package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/notify"
	"jobhunter/internal/resume"
)

func sseServer(t *testing.T, hub *notify.Hub, actor resume.Actor) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/resumes/subscribe", injectActor(actor), NewSSEHandler(hub, nil).Subscribe)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// scanEvent reads lines until the next "event:" line and returns the event
// name and its data line.
func scanEvent(t *testing.T, scanner *bufio.Scanner) (name, data string) {
	t.Helper()
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "event:") {
			continue
		}
		name = strings.TrimPrefix(line, "event:")
		for scanner.Scan() {
			dataLine := scanner.Text()
			if strings.HasPrefix(dataLine, "data:") {
				return name, strings.TrimPrefix(dataLine, "data:")
			}
			if dataLine == "" {
				break
			}
		}
		return name, ""
	}
	t.Fatalf("stream ended before an event arrived: %v", scanner.Err())
	return "", ""
}

func waitConnections(t *testing.T, hub *notify.Hub, userID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connections(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connections for user %d never reached %d", userID, want)
}

func TestSSESubscribeStreamsEvents(t *testing.T) {
	hub := notify.NewHub(nil)
	actor := resume.Actor{UserID: 7, Email: "a@example.com"}
	srv := sseServer(t, hub, actor)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/resumes/subscribe", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)

	name, _ := scanEvent(t, scanner)
	if name != notify.EventPing {
		t.Fatalf("first event = %q, want %q", name, notify.EventPing)
	}

	waitConnections(t, hub, actor.UserID, 1)
	hub.Send(actor.UserID, notify.Event{Name: notify.EventResumeStatus, Data: notify.StatusEvent{
		ResumeID:   42,
		Status:     "APPROVED",
		StatusText: "ĐÃ PHÊ DUYỆT",
		Job:        "Backend Engineer",
		Company:    "FPT Software",
	}})

	name, data := scanEvent(t, scanner)
	if name != notify.EventResumeStatus {
		t.Fatalf("event = %q, want %q", name, notify.EventResumeStatus)
	}
	for _, want := range []string{`"resumeId":42`, `"status":"APPROVED"`, `"job":"Backend Engineer"`} {
		if !strings.Contains(data, want) {
			t.Fatalf("data missing %q: %s", want, data)
		}
	}

	resp.Body.Close()
	waitConnections(t, hub, actor.UserID, 0)
}
