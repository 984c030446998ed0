package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobhunter/internal/config"
	"jobhunter/internal/mailer"
	"jobhunter/internal/metrics"
	"jobhunter/internal/tasks"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr()}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	sender := mailer.NewSMTPSender(cfg.SMTP)
	emailHandler := mailer.NewTaskHandler(sender, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeEmailResumeStatus, emailHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		logger.Info("worker metrics listening", slog.String("addr", addr))
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logger.Error("worker metrics server stopped", slog.Any("error", err))
		}
	}()

	logger.Info("worker service started",
		slog.String("redis_addr", cfg.Redis.Addr()),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		log.Fatalf("worker server stopped: %v", err)
	}
}
