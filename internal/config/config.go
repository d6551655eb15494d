package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Relay is the relay service configuration, built once at startup.
type Relay struct {
	Port           string
	OllamaURL      string
	DefaultModel   string
	BodyLimit      int64
	OllamaTimeout  time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogJSON        bool
}

// Client is the chat client configuration shared by the web and terminal front ends.
type Client struct {
	Port         string
	RelayURL     string
	SystemPrompt string
	Model        string
	LogLevel     string
	LogJSON      bool
}

const (
	DefaultPort         = "3001"
	DefaultOllamaURL    = "http://127.0.0.1:11434"
	DefaultModel        = "gemma3:1b"
	DefaultBodyLimit    = "2MiB"
	DefaultTimeout      = 240 * time.Second
	DefaultClientPort   = "3000"
	DefaultRelayURL     = "http://localhost:3001"
	DefaultSystemPrompt = "You are a helpful assistant."
)

// LoadRelay reads an optional .env file and then the environment.
func LoadRelay() (Relay, error) {
	_ = godotenv.Load()

	limit, err := humanize.ParseBytes(getEnv("RELAY_BODY_LIMIT", DefaultBodyLimit))
	if err != nil {
		return Relay{}, fmt.Errorf("RELAY_BODY_LIMIT: %w", err)
	}
	timeout, err := time.ParseDuration(getEnv("OLLAMA_TIMEOUT", DefaultTimeout.String()))
	if err != nil {
		return Relay{}, fmt.Errorf("OLLAMA_TIMEOUT: %w", err)
	}

	return Relay{
		Port:           getEnv("PORT", DefaultPort),
		OllamaURL:      strings.TrimRight(getEnv("OLLAMA_URL", DefaultOllamaURL), "/"),
		DefaultModel:   getEnv("MODEL", DefaultModel),
		BodyLimit:      int64(limit),
		OllamaTimeout:  timeout,
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogJSON:        getEnvBool("LOG_JSON", false),
	}, nil
}

func LoadClient() Client {
	_ = godotenv.Load()

	return Client{
		Port:         getEnv("CHAT_PORT", DefaultClientPort),
		RelayURL:     strings.TrimRight(getEnv("RELAY_URL", DefaultRelayURL), "/"),
		SystemPrompt: getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
		Model:        os.Getenv("CHAT_MODEL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogJSON:      getEnvBool("LOG_JSON", false),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
