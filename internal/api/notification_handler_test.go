package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"jobhunter/internal/database"
	"jobhunter/internal/notify"
	"jobhunter/internal/resume"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func notificationEngine(store *notify.Store, actor resume.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewNotificationHandler(store)
	group := r.Group("/v1/notifications")
	group.Use(injectActor(actor))
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.PUT("/read-all", handler.MarkAllRead)
		group.PUT("/:id/read", handler.MarkRead)
		group.DELETE("/:id", handler.Delete)
		group.DELETE("", handler.DeleteAll)
	}
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedStore(t *testing.T, store *notify.Store, userID uint, n int) []*database.Notification {
	t.Helper()
	out := make([]*database.Notification, 0, n)
	for i := 0; i < n; i++ {
		rec, err := store.Create(context.Background(), userID, "Trạng thái hồ sơ", fmt.Sprintf("update %d", i), "ĐANG XEM XÉT")
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestNotificationList(t *testing.T) {
	store := notify.NewStore(newTestDB(t), nil, nil)
	seedStore(t, store, 1, 3)
	seedStore(t, store, 2, 1)
	r := notificationEngine(store, resume.Actor{UserID: 1, Email: "a@example.com"})

	w := do(r, http.MethodGet, "/v1/notifications?page=1&pageSize=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meta struct {
			Page     int   `json:"page"`
			PageSize int   `json:"pageSize"`
			Pages    int   `json:"pages"`
			Total    int64 `json:"total"`
		} `json:"meta"`
		Result []struct {
			ID      uint   `json:"id"`
			Title   string `json:"title"`
			Content string `json:"content"`
			Read    bool   `json:"read"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta.Total != 3 || resp.Meta.Pages != 2 || resp.Meta.PageSize != 2 {
		t.Fatalf("meta = %+v", resp.Meta)
	}
	if len(resp.Result) != 2 {
		t.Fatalf("result = %d items", len(resp.Result))
	}
	if resp.Result[0].Title != "Trạng thái hồ sơ" || resp.Result[0].Read {
		t.Fatalf("item = %+v", resp.Result[0])
	}
}

func TestNotificationUnreadCountAndMarkRead(t *testing.T) {
	store := notify.NewStore(newTestDB(t), nil, nil)
	recs := seedStore(t, store, 1, 2)
	r := notificationEngine(store, resume.Actor{UserID: 1, Email: "a@example.com"})

	w := do(r, http.MethodGet, "/v1/notifications/unread-count")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var count struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if count.Count != 2 {
		t.Fatalf("count = %d, want 2", count.Count)
	}

	w = do(r, http.MethodPut, fmt.Sprintf("/v1/notifications/%d/read", recs[0].ID))
	if w.Code != http.StatusNoContent {
		t.Fatalf("mark read status = %d", w.Code)
	}

	w = do(r, http.MethodGet, "/v1/notifications/unread-count")
	json.Unmarshal(w.Body.Bytes(), &count)
	if count.Count != 1 {
		t.Fatalf("count = %d, want 1", count.Count)
	}

	w = do(r, http.MethodPut, "/v1/notifications/99999/read")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", w.Code)
	}
	w = do(r, http.MethodPut, "/v1/notifications/abc/read")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}
}

func TestNotificationMarkAllReadAndDelete(t *testing.T) {
	store := notify.NewStore(newTestDB(t), nil, nil)
	recs := seedStore(t, store, 1, 2)
	r := notificationEngine(store, resume.Actor{UserID: 1, Email: "a@example.com"})

	if w := do(r, http.MethodPut, "/v1/notifications/read-all"); w.Code != http.StatusNoContent {
		t.Fatalf("read-all status = %d", w.Code)
	}

	var count struct {
		Count int64 `json:"count"`
	}
	w := do(r, http.MethodGet, "/v1/notifications/unread-count")
	json.Unmarshal(w.Body.Bytes(), &count)
	if count.Count != 0 {
		t.Fatalf("count = %d, want 0", count.Count)
	}

	if w := do(r, http.MethodDelete, fmt.Sprintf("/v1/notifications/%d", recs[0].ID)); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, fmt.Sprintf("/v1/notifications/%d", recs[0].ID)); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}

	if w := do(r, http.MethodDelete, "/v1/notifications"); w.Code != http.StatusNoContent {
		t.Fatalf("delete-all status = %d", w.Code)
	}

	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	w = do(r, http.MethodGet, "/v1/notifications")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Meta.Total != 0 {
		t.Fatalf("total = %d, want 0", resp.Meta.Total)
	}
}

func TestNotificationEndpointsAreOwnerScoped(t *testing.T) {
	store := notify.NewStore(newTestDB(t), nil, nil)
	recs := seedStore(t, store, 1, 1)
	other := notificationEngine(store, resume.Actor{UserID: 2, Email: "b@example.com"})

	if w := do(other, http.MethodPut, fmt.Sprintf("/v1/notifications/%d/read", recs[0].ID)); w.Code != http.StatusNotFound {
		t.Fatalf("foreign mark read status = %d, want 404", w.Code)
	}
	if w := do(other, http.MethodDelete, fmt.Sprintf("/v1/notifications/%d", recs[0].ID)); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", w.Code)
	}
}
