package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Temperature is the only generation option the relay sets.
const Temperature = 0.7

type Client struct {
	baseURL string
	log     *slog.Logger
	client  *http.Client
}

type Options struct {
	Temperature float64 `json:"temperature"`
}

// ChatRequest is the body of POST /api/chat. Messages are kept as raw JSON so
// whatever the caller sent reaches Ollama untouched.
type ChatRequest struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
	Stream   bool              `json:"stream"`
	Options  Options           `json:"options"`
}

// UpstreamError is returned when Ollama answers with a non-2xx status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ollama status %d: %s", e.Status, e.Body)
}

// NewClient returns a client for the Ollama API at baseURL. A zero timeout
// means requests wait as long as Ollama takes.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: trimSlash(baseURL),
		log:     log,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/version", c.baseURL), nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()
	c.log.Debug("ping response", "response", string(data))
	if res.StatusCode >= 400 {
		return fmt.Errorf("ollama ping status: %d", res.StatusCode)
	}

	return nil
}

// Chat sends a non-streaming chat request via /api/chat and returns the
// response document unchanged.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (json.RawMessage, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/chat", c.baseURL), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read ollama response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{Status: res.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, errors.New("ollama response is not valid JSON")
	}
	return body, nil
}

func trimSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
