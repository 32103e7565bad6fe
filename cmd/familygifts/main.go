package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/api"
	"github.com/Kerhoff/familygifts/internal/config"
	"github.com/Kerhoff/familygifts/internal/handlers"
	"github.com/Kerhoff/familygifts/internal/metrics"
	"github.com/Kerhoff/familygifts/internal/repository"
	"github.com/Kerhoff/familygifts/internal/repository/memory"
	"github.com/Kerhoff/familygifts/internal/repository/postgres"
	"github.com/Kerhoff/familygifts/internal/service"
	"github.com/Kerhoff/familygifts/internal/telegram"
	"github.com/Kerhoff/familygifts/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting Family Gifts...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	store, closeStore, err := openStore(ctx, cfg, l)
	if err != nil {
		l.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	m := metrics.New()
	svc := service.New(store, l, m)

	// Metrics endpoint
	metricsServer := &http.Server{
		Addr:    ":" + cfg.PrometheusPort,
		Handler: m.Handler(),
	}
	go func() {
		l.Infof("Metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// HTTP API
	apiServer := api.NewServer(svc, l, m)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Telegram bot
	if cfg.BotEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("start", handlers.NewStartHandler(svc, l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(l))

		lists := handlers.NewListsHandler(svc, l)
		bot.RegisterCommand("lists", lists)
		bot.RegisterCommand("list", lists)

		bot.RegisterCommand("suggestions", handlers.NewSuggestionsHandler(svc, l))
		bot.RegisterCommand("approve", handlers.NewApproveHandler(svc, l))
		bot.RegisterCommand("deny", handlers.NewDenyHandler(svc, l))

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		l.Info("TELEGRAM_TOKEN not set, Telegram bot disabled")
	}

	l.Info("Family Gifts started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown error: %v", err)
	}

	l.Info("Family Gifts stopped")
}

// openStore builds the configured repository store and its cleanup func.
func openStore(ctx context.Context, cfg *config.Config, l *logrus.Logger) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		l.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil

	case config.StoragePostgres:
		db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.MigrationsEnabled {
			if err := db.Migrate(); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		return postgres.NewStore(db.DB), func() {
			if err := db.Close(); err != nil {
				l.Errorf("Failed to close database: %v", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
