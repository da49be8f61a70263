package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tkodvv/modbot/internal/animals"
	"github.com/Tkodvv/modbot/internal/bot"
	"github.com/Tkodvv/modbot/internal/config"
	"github.com/Tkodvv/modbot/internal/modlog"
	"github.com/Tkodvv/modbot/internal/reports"
	"github.com/Tkodvv/modbot/internal/storage"
	"github.com/Tkodvv/modbot/internal/trigen"
	"github.com/Tkodvv/modbot/internal/weather"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	caseLog := modlog.NewLogger(store, logger)
	reportSvc := reports.New(store)
	trigenClient := trigen.NewClient(cfg.Trigen.BaseURL, cfg.Trigen.Endpoint, cfg.Trigen.APIKey, logger)
	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey)
	animalClient := animals.NewClient(cfg.CatAPIKey)

	botSvc, err := bot.New(cfg, logger, store, caseLog, reportSvc, trigenClient, weatherClient, animalClient)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
