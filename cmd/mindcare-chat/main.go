package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/comigor/mindcare-go/internal/composer"
	"github.com/comigor/mindcare-go/internal/config"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/gateway"
	"github.com/comigor/mindcare-go/internal/history"
	"github.com/comigor/mindcare-go/internal/llm"
	"github.com/comigor/mindcare-go/internal/logger"
	"github.com/comigor/mindcare-go/internal/tui"
)

func main() {
	// JSON log lines would tear the terminal UI
	logPath := filepath.Join(os.TempDir(), "mindcare-chat.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.L.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.L.Warn("using info log level", "error", err)
	}
	if cfg.LLM.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: MINDCARE_LLM_API_KEY is not set; replies will fall back to the error message")
	}

	conv, err := conversation.New(context.Background(), "local", history.NewMemoryStore())
	if err != nil {
		fmt.Fprintln(os.Stderr, "start conversation:", err)
		os.Exit(1)
	}
	gw := gateway.New(llm.NewClient(cfg.LLM), cfg.LLM)

	p := tea.NewProgram(tui.New(composer.New(conv, gw)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "chat:", err)
		os.Exit(1)
	}
}
