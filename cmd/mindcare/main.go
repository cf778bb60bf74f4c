package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/comigor/mindcare-go/internal/config"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/gateway"
	"github.com/comigor/mindcare-go/internal/history"
	"github.com/comigor/mindcare-go/internal/llm"
	"github.com/comigor/mindcare-go/internal/logger"
	"github.com/comigor/mindcare-go/internal/server"
	"github.com/comigor/mindcare-go/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.L.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.L.Warn("using info log level", "error", err)
	}
	if cfg.LLM.APIKey == "" {
		logger.L.Warn("llm.api_key is empty; every reply will fall back to the error message")
	}

	store, closeStore, err := openStore(ctx, cfg.History)
	if err != nil {
		logger.L.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	gw := gateway.New(llm.NewClient(cfg.LLM), cfg.LLM)
	sessions := session.NewManager(store, gw, session.Options{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
	})
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           server.NewRouter(sessions, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.L.Warn("server shutdown error", "error", err)
		}
	}()

	logger.L.Info("starting server", "address", serverAddr, "model", cfg.LLM.Model, "history", cfg.History.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.HistoryConfig) (conversation.Store, func(), error) {
	if cfg.Driver == config.HistoryDriverSQLite {
		s, err := history.OpenSQLite(ctx)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return history.NewMemoryStore(), func() {}, nil
}
