package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varsilias/ollama-chat-relay/internal/logging"
	"github.com/varsilias/ollama-chat-relay/internal/session"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

func TestRelayEngine_Chat(t *testing.T) {
	var got types.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"model":"gemma3:1b","message":{"role":"assistant","content":"hi"},"done":true}`)
	}))
	defer srv.Close()

	e := NewRelayEngine(srv.URL+"/", "")
	res, err := e.Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hello"}})
	require.NoError(t, err)

	assert.Equal(t, &types.Message{Role: types.RoleAssistant, Content: "hi"}, res.Message)
	assert.Equal(t, []types.Message{{Role: types.RoleUser, Content: "hello"}}, got.Messages)
	assert.Empty(t, got.Model)
}

func TestRelayEngine_SendsConfiguredModel(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewRelayEngine(srv.URL, "phi3").Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "phi3", raw["model"])
}

func TestRelayEngine_ErrorPayloadYieldsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"Ollama error","detail":"boom"}`)
	}))
	defer srv.Close()

	c := NewController(logging.Discard(), NewRelayEngine(srv.URL, ""), session.NewTranscript("sys"))
	require.NoError(t, c.Submit(context.Background(), "hello"))

	assert.Equal(t, types.Message{Role: types.RoleAssistant, Content: NoResponse}, c.Transcript().Visible()[1])
}

func TestRelayEngine_NetworkFailureYieldsWarning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewController(logging.Discard(), NewRelayEngine(addr, ""), session.NewTranscript("sys"))
	require.NoError(t, c.Submit(context.Background(), "hello"))

	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: ErrorWarning},
	}, c.Transcript().Visible())
	assert.False(t, c.Transcript().Loading())
}

func TestRelayEngine_NonJSONIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>502 Bad Gateway</html>")
	}))
	defer srv.Close()

	_, err := NewRelayEngine(srv.URL, "").Chat(context.Background(), nil)
	assert.Error(t, err)
}

func TestRelayEngine_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"ok":true,"model":"gemma3:1b"}`)
	}))
	defer srv.Close()

	h, err := NewRelayEngine(srv.URL, "").Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.HealthResponse{OK: true, Model: "gemma3:1b"}, h)
}
