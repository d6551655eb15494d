package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

// RelayEngine talks to the relay service over HTTP.
type RelayEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewRelayEngine returns an engine posting to baseURL/api/chat. An empty
// model lets the relay pick its default.
func NewRelayEngine(baseURL, model string) *RelayEngine {
	return &RelayEngine{
		baseURL: trimSlash(baseURL),
		model:   model,
		client:  &http.Client{},
	}
}

// Chat posts the transcript and decodes whatever JSON comes back. The status
// code is not inspected: a relay error payload simply carries no message.
func (e *RelayEngine) Chat(ctx context.Context, messages []types.Message) (*types.ChatResponse, error) {
	b, err := json.Marshal(types.ChatRequest{Messages: messages, Model: e.model})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out types.ChatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode relay response (status %d): %w", res.StatusCode, err)
	}
	return &out, nil
}

// Health reads the relay's liveness payload.
func (e *RelayEngine) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return out, err
	}
	res, err := e.client.Do(req)
	if err != nil {
		return out, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return out, fmt.Errorf("relay health: %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
