package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/config"
	"urbantales/internal/repositories"
	"urbantales/internal/server"
	"urbantales/internal/services"
	"urbantales/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		logrus.Fatalf("Failed to build logger: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Accounts database ---
	db, err := repositories.OpenAccountsDB(cfg.AccountsDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to open accounts database")
	}

	// --- Document store ---
	var (
		repos       server.Repositories
		healthCheck func(ctx context.Context) error
	)
	switch cfg.StoreDriver {
	case "mongo":
		store, err := repositories.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				log.WithError(err).Error("Error closing MongoDB client")
			}
		}()
		if err := store.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create MongoDB indexes")
		}
		repos = server.MongoRepositories(store, db)
		healthCheck = store.Ping
	default:
		log.Warn("Using in-memory document store; data is lost on restart")
		repos = server.MemoryRepositories(db)
	}

	// --- RabbitMQ ---
	var (
		publisher services.EventPublisher
		mqClient  *rabbitmq.Client
	)
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	srv := server.New(server.Options{
		Config:      cfg,
		Log:         log,
		Repos:       repos,
		Publisher:   publisher,
		HealthCheck: healthCheck,
	})

	if mqClient != nil {
		handler := func(ctx context.Context, body []byte) error {
			err := srv.Notifications.HandleOrderEventMessage(ctx, body)
			if apperror.Is(err, apperror.KindValidation) {
				return &rabbitmq.PermanentError{Err: err}
			}
			return err
		}
		if err := mqClient.ConsumeOrderEvents(ctx, handler); err != nil {
			log.WithError(err).Fatal("Failed to start RabbitMQ consumer")
		}
	}

	if cfg.SeedDemoData {
		if err := server.SeedDemoData(ctx, srv, log); err != nil {
			log.WithError(err).Error("Failed to seed demo data")
		}
	}

	// --- Start HTTP Server ---
	go func() {
		log.WithField("port", cfg.AppPort).Info("Starting server")
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stop()

	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.WithFields(logrus.Fields{"store": cfg.StoreDriver}).Info("Server gracefully stopped")
}
