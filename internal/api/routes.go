package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"jobhunter/internal/api/middleware"
	"jobhunter/internal/auth"
	"jobhunter/internal/notify"
	"jobhunter/internal/resume"
)

// RegisterRoutes wires every versioned endpoint onto the engine.
func RegisterRoutes(
	router *gin.Engine,
	service *resume.Service,
	store *notify.Store,
	hub *notify.Hub,
	validator *auth.Validator,
	logger *slog.Logger,
	allowedOrigins []string,
) {
	resumeHandler := NewResumeHandler(service)
	notificationHandler := NewNotificationHandler(store)
	sseHandler := NewSSEHandler(hub, logger)
	wsHandler := NewWsHandler(hub, validator, logger, allowedOrigins)
	authMiddleware := middleware.AuthMiddleware(validator)

	router.Use(middleware.CorrelationIDMiddleware(), middleware.SlogLoggerMiddleware(logger))

	v1 := router.Group("/v1")
	{
		// The WebSocket endpoint authenticates via its first message instead
		// of a header, so it sits outside the auth middleware.
		v1.GET("/ws", wsHandler.HandleConnection)

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.PUT("/status", resumeHandler.UpdateStatus)
			resumeGroup.GET("/subscribe", sseHandler.Subscribe)
		}

		notificationGroup := v1.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationGroup.PUT("/read-all", notificationHandler.MarkAllRead)
			notificationGroup.PUT("/:id/read", notificationHandler.MarkRead)
			notificationGroup.DELETE("/:id", notificationHandler.Delete)
			notificationGroup.DELETE("", notificationHandler.DeleteAll)
		}
	}
}
