package mailer

import (
	"strings"
	"testing"
)

func TestRenderApprovedBody(t *testing.T) {
	body, err := Render("resume-status", map[string]string{
		"name":              "Nguyễn Văn A",
		"status":            "APPROVED",
		"statusText":        "ĐÃ PHÊ DUYỆT",
		"jobName":           "Backend Engineer",
		"companyName":       "FPT Software",
		"interviewAt":       "01/05/2025 17:00",
		"interviewLocation": "Room 1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Nguyễn Văn A",
		"Backend Engineer",
		"FPT Software",
		"ĐÃ PHÊ DUYỆT",
		"Thời gian phỏng vấn: 01/05/2025 17:00",
		"Địa điểm/Link: Room 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Lý do") {
		t.Fatalf("approved body must not contain rejection copy")
	}
	if strings.Contains(body, "Ghi chú") {
		t.Fatalf("empty note must not render a list item")
	}
}

func TestRenderRejectedBody(t *testing.T) {
	body, err := Render("resume-status", map[string]string{
		"name":         "Trần Thị B",
		"status":       "REJECTED",
		"statusText":   "BỊ TỪ CHỐI",
		"jobName":      "QA Engineer",
		"companyName":  "VNG Corporation",
		"rejectReason": "Thiếu kinh nghiệm",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(body, "Lý do: Thiếu kinh nghiệm") {
		t.Fatalf("body missing reject reason:\n%s", body)
	}
	if strings.Contains(body, "phỏng vấn.") {
		t.Fatalf("rejected body must not contain interview invitation")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := Render("does-not-exist", nil); err == nil {
		t.Fatalf("expected an error for an unknown template")
	}
}
