package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/varsilias/ollama-chat-relay/internal/api"
	"github.com/varsilias/ollama-chat-relay/internal/buildinfo"
	"github.com/varsilias/ollama-chat-relay/internal/config"
	"github.com/varsilias/ollama-chat-relay/internal/logging"
	"github.com/varsilias/ollama-chat-relay/internal/metrics"
	"github.com/varsilias/ollama-chat-relay/internal/middleware"
	"github.com/varsilias/ollama-chat-relay/internal/ollama"
)

func main() {
	cfg, err := config.LoadRelay()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flag.StringVar(&cfg.OllamaURL, "ollama", cfg.OllamaURL, "Ollama base URL")
	flag.StringVar(&cfg.DefaultModel, "model", cfg.DefaultModel, "default model when a request names none")
	flag.DurationVar(&cfg.OllamaTimeout, "ollama-timeout", cfg.OllamaTimeout, "upstream request timeout (0 disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogJSON)
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)

	oc := ollama.NewClient(cfg.OllamaURL, cfg.OllamaTimeout, logger)
	probeOllama(oc, logger)

	m := metrics.NewRelay()
	h := api.NewHandlers(logger, oc, cfg.DefaultModel, m)

	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Recoverer(logger),
		middleware.VersionHeader(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.BodyLimit(cfg.BodyLimit),
	)
	api.RegisterRoutes(mux, h, m.Handler())

	if len(cfg.AllowedOrigins) == 0 {
		logger.Warn("CORS accepts any origin; set CORS_ALLOWED_ORIGINS to restrict")
	}

	server := http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      writeTimeout(cfg.OllamaTimeout),
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("API listening", "addr", "http://0.0.0.0:"+cfg.Port,
		"ollama", cfg.OllamaURL,
		"model", cfg.DefaultModel,
		"body_limit", humanize.IBytes(uint64(cfg.BodyLimit)),
		"ollama_timeout", cfg.OllamaTimeout.String(),
	)

	// Graceful shutdown
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
	} else {
		logger.Info("server stopped")
	}
}

// probeOllama logs whether Ollama answers. The relay starts either way.
func probeOllama(oc *ollama.Client, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := oc.Ping(ctx); err != nil {
		log.Warn("ollama not reachable yet", "url", oc.BaseURL(), "err", err)
		return
	}
	log.Info("ollama reachable", "url", oc.BaseURL())
}

// writeTimeout leaves room for the slowest upstream call. Zero means no limit.
func writeTimeout(upstream time.Duration) time.Duration {
	if upstream <= 0 {
		return 0
	}
	return upstream + 30*time.Second
}
