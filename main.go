package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/config"
	"taskboard/events"
	"taskboard/middleware"
	"taskboard/routes"
	"taskboard/utils"
	"taskboard/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	if err := config.InitLogger(cfg); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	if err := config.InitSentry(cfg); err != nil {
		logrus.Fatalf("Failed to initialize sentry: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	utils.HashCost = cfg.BcryptCost

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	var (
		publisher events.Publisher = hub
		storage   fiber.Storage
	)
	if client := config.NewRedisClient(cfg.Redis); client != nil {
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("Failed to connect to redis: %v", err)
		}

		storage = middleware.NewRedisStorage(client)
		broker := events.NewRedisBroker(client, hub, logrus.WithField("component", "events"))
		publisher = broker
		go func() {
			if err := broker.Run(ctx); err != nil {
				utils.LogError("event_relay_failed", err, nil)
			}
		}()
	}

	if cfg.OrderCompactionInterval > 0 {
		compactor := worker.NewOrderCompactor(config.DB, cfg.OrderCompactionInterval, logrus.WithField("component", "compactor"))
		go compactor.Start(ctx)
	}

	app := routes.NewApp(routes.Dependencies{
		DB:               config.DB,
		Hub:              hub,
		Publisher:        publisher,
		InviteSecret:     cfg.InviteSecret,
		InviteTTL:        cfg.InviteTTL,
		LoginRateLimit:   cfg.LoginRateLimit,
		RateLimitStorage: storage,
		CORS:             middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins},
		AccessLog:        true,
	})

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
