package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/ollama-chat-relay/internal/buildinfo"
	"github.com/varsilias/ollama-chat-relay/internal/chat"
	"github.com/varsilias/ollama-chat-relay/internal/config"
	"github.com/varsilias/ollama-chat-relay/internal/logging"
	"github.com/varsilias/ollama-chat-relay/internal/middleware"
	"github.com/varsilias/ollama-chat-relay/internal/session"
	"github.com/varsilias/ollama-chat-relay/internal/ui"
)

func main() {
	cfg := config.LoadClient()
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flag.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "relay base URL")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "model to request (empty uses the relay default)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogJSON)
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)

	engine := chat.NewRelayEngine(cfg.RelayURL, cfg.Model)
	ctrl := chat.NewController(logger, engine, session.NewTranscript(cfg.SystemPrompt))

	model := cfg.Model
	if model == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if h, err := engine.Health(ctx); err != nil {
			logger.Warn("relay not reachable yet", "relay", cfg.RelayURL, "err", err)
		} else {
			model = h.Model
		}
		cancel()
	}

	uih, err := ui.New(logger, ctrl, model)
	if err != nil {
		logger.Error("ui init", "err", err)
		os.Exit(1)
	}

	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Recoverer(logger),
		middleware.VersionHeader(),
	)
	ui.RegisterRoutes(mux, uih)

	server := http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	logger.Info("chat UI listening", "addr", "http://0.0.0.0:"+cfg.Port, "relay", cfg.RelayURL)

	errChan := make(chan error, 1)
	go func() { errChan <- server.ListenAndServe() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	ctrl.Wait()
	logger.Info("chat UI stopped")
}
