package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/varsilias/ollama-chat-relay/internal/chat"
	"github.com/varsilias/ollama-chat-relay/internal/config"
	"github.com/varsilias/ollama-chat-relay/internal/logging"
	"github.com/varsilias/ollama-chat-relay/internal/session"
	"github.com/varsilias/ollama-chat-relay/internal/tui"
)

func main() {
	cfg := config.LoadClient()
	logPath := flag.String("log-file", filepath.Join(os.TempDir(), "chat-tui.log"), "where to write logs; the terminal belongs to the UI")
	flag.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "relay base URL")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "model to request (empty uses the relay default)")
	flag.Parse()

	f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer f.Close()
	logger := logging.NewWriter(f, cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	screen := tui.New(fmt.Sprintf(" AI Chat · %s ", cfg.RelayURL))
	ctrl := chat.NewController(logger,
		chat.NewRelayEngine(cfg.RelayURL, cfg.Model),
		session.NewTranscript(cfg.SystemPrompt),
		chat.WithOnChange(screen.Refresh),
	)

	if err := screen.Run(ctx, ctrl); err != nil {
		logger.Error("tui", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
