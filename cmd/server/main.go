package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MShkut/personal-finance-tracker/internal/config"
	"github.com/MShkut/personal-finance-tracker/internal/database"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
	"github.com/MShkut/personal-finance-tracker/internal/onboarding"
	"github.com/MShkut/personal-finance-tracker/internal/server"
	"github.com/MShkut/personal-finance-tracker/internal/session"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := database.Migrate(cfg.Database); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stores, err := database.OpenStores(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stores.Close()

	hub := notifications.NewHub()
	publishers := []notifications.Publisher{hub}
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := notifications.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.RoutingPrefix)
		if err != nil {
			logger.Warn("amqp events disabled", slog.String("error", err.Error()))
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
			logger.Info("amqp events enabled", slog.String("exchange", cfg.Events.Exchange))
		}
	}
	publisher := notifications.NewFanout(logger, publishers...)

	sessions := session.NewRegistry(userdata.NewStore(stores.Records), onboarding.Options{
		Resume:   cfg.Onboarding.Resume,
		Currency: cfg.Currency,
		Logger:   logger,
	}, logger)
	stopSweeper, err := sessions.StartSweeper(cfg.Sessions.SweepSchedule, cfg.Sessions.IdleTTL)
	if err != nil {
		logger.Error("failed to start session sweeper", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stopSweeper()

	e, err := server.New(cfg, logger, server.Dependencies{
		Users:     stores.Users,
		Records:   stores.Records,
		Hub:       hub,
		Publisher: publisher,
		Sessions:  sessions,
	})
	if err != nil {
		logger.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func logLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
