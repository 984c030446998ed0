package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"jobhunter/internal/api"
	"jobhunter/internal/auth"
	"jobhunter/internal/config"
	"jobhunter/internal/database"
	"jobhunter/internal/mailer"
	"jobhunter/internal/notify"
	"jobhunter/internal/resume"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready, host=%s db=%s", cfg.Database.Host, cfg.Database.Name)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	publicKeyPEM, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("read auth public key: %v", err)
	}
	validator, err := auth.NewValidator(publicKeyPEM)
	if err != nil {
		log.Fatalf("init token validator: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	hub := notify.NewHub(logger)
	store := notify.NewStore(db, redisClient, logger)
	dispatcher := mailer.NewDispatcher(asynqClient, logger)
	fanout := notify.NewFanout(store, hub, dispatcher, logger)
	service := resume.NewService(db, fanout, logger)

	router := api.NewRouter()
	api.RegisterRoutes(router, service, store, hub, validator, logger, cfg.API.Origins())

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
