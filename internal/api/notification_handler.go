package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/api/middleware"
	"jobhunter/internal/database"
	"jobhunter/internal/notify"
)

// NotificationHandler serves the per-user notification read surface. The core
// never reads notifications; these endpoints exist for the notification bell.
type NotificationHandler struct {
	store *notify.Store
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(store *notify.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

type notificationItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type notificationListResponse struct {
	Meta struct {
		Page     int   `json:"page"`
		PageSize int   `json:"pageSize"`
		Pages    int   `json:"pages"`
		Total    int64 `json:"total"`
	} `json:"meta"`
	Result []notificationItem `json:"result"`
}

// List returns one page of the user's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, total, err := h.store.List(c.Request.Context(), actor.UserID, page, pageSize)
	if err != nil {
		Internal(c, "failed to list notifications")
		return
	}

	var resp notificationListResponse
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	resp.Meta.Page = page
	resp.Meta.PageSize = pageSize
	resp.Meta.Pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	resp.Meta.Total = total
	resp.Result = make([]notificationItem, 0, len(items))
	for _, n := range items {
		resp.Result = append(resp.Result, newNotificationItem(n))
	}

	c.JSON(http.StatusOK, resp)
}

// UnreadCount returns how many notifications are still unread.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	count, err := h.store.UnreadCount(c.Request.Context(), actor.UserID)
	if err != nil {
		Internal(c, "failed to count unread notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead flips the read flag on one notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid notification id")
		return
	}

	switch err := h.store.MarkRead(c.Request.Context(), actor.UserID, uint(id)); {
	case errors.Is(err, notify.ErrNotFound):
		NotFound(c, "notification not found")
	case err != nil:
		Internal(c, "failed to mark notification read")
	default:
		c.Status(http.StatusNoContent)
	}
}

// MarkAllRead flips the read flag on every unread notification of the user.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.store.MarkAllRead(c.Request.Context(), actor.UserID); err != nil {
		Internal(c, "failed to mark notifications read")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid notification id")
		return
	}

	switch err := h.store.Delete(c.Request.Context(), actor.UserID, uint(id)); {
	case errors.Is(err, notify.ErrNotFound):
		NotFound(c, "notification not found")
	case err != nil:
		Internal(c, "failed to delete notification")
	default:
		c.Status(http.StatusNoContent)
	}
}

// DeleteAll removes every notification of the user.
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.store.DeleteAll(c.Request.Context(), actor.UserID); err != nil {
		Internal(c, "failed to delete notifications")
		return
	}
	c.Status(http.StatusNoContent)
}

func newNotificationItem(n database.Notification) notificationItem {
	return notificationItem{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
