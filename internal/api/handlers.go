package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/varsilias/ollama-chat-relay/internal/buildinfo"
	"github.com/varsilias/ollama-chat-relay/internal/metrics"
	"github.com/varsilias/ollama-chat-relay/internal/middleware"
	"github.com/varsilias/ollama-chat-relay/internal/ollama"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
	"github.com/varsilias/ollama-chat-relay/pkg/utils"
)

const (
	MsgMessagesRequired = "messages[] is required"
	MsgInvalidJSON      = "invalid json"
	MsgModelType        = "model must be a string"
	MsgUpstream         = "Ollama error"
	MsgServerError      = "server_error"
)

// Upstream is the part of the Ollama client the relay needs.
type Upstream interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (json.RawMessage, error)
}

type Handlers struct {
	log          *slog.Logger
	upstream     Upstream
	defaultModel string
	metrics      *metrics.Relay
}

func NewHandlers(log *slog.Logger, upstream Upstream, defaultModel string, m *metrics.Relay) *Handlers {
	return &Handlers{
		log:          log,
		upstream:     upstream,
		defaultModel: defaultModel,
		metrics:      m,
	}
}

// chatRequest is the validated body of POST /api/chat. Messages stay raw so
// they are forwarded byte for byte.
type chatRequest struct {
	Messages []json.RawMessage
	Model    string
}

// Health is a basic liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, types.HealthResponse{OK: true, Model: h.defaultModel})
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuiltAt,
	}

	utils.JSON(w, http.StatusOK, res)
}

// Chat forwards a transcript to Ollama and relays its answer.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	log := h.log.With("req_id", middleware.GetRequestID(r.Context()))

	req, status, msg := h.decode(r)
	if status != 0 {
		log.Warn("chat request rejected", "status", status, "error", msg)
		h.metrics.Observe(metrics.OutcomeValidation)
		utils.Error(w, status, msg)
		return
	}

	start := time.Now()
	data, err := h.upstream.Chat(r.Context(), ollama.ChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options:  ollama.Options{Temperature: ollama.Temperature},
	})
	h.metrics.ObserveUpstream(time.Since(start))

	var upErr *ollama.UpstreamError
	switch {
	case errors.As(err, &upErr):
		log.Error("ollama error", "model", req.Model, "status", upErr.Status, "detail", upErr.Body)
		h.metrics.Observe(metrics.OutcomeUpstream)
		utils.ErrorDetail(w, http.StatusBadGateway, MsgUpstream, upErr.Body)
	case err != nil:
		log.Error("chat relay failed", "model", req.Model, "err", err)
		h.metrics.Observe(metrics.OutcomeInternal)
		utils.ErrorDetail(w, http.StatusInternalServerError, MsgServerError, err.Error())
	default:
		h.metrics.Observe(metrics.OutcomeOK)
		utils.Raw(w, http.StatusOK, data)
	}
}

// decode validates the body against chatRequest. A non-zero status means the
// request is rejected with msg.
func (h *Handlers) decode(r *http.Request) (chatRequest, int, string) {
	var req chatRequest

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, http.StatusRequestEntityTooLarge, middleware.MsgTooLarge
		}
		return req, http.StatusBadRequest, MsgInvalidJSON
	}

	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(body)) > 0 {
		if !json.Valid(body) {
			return req, http.StatusBadRequest, MsgInvalidJSON
		}
		// bodies that are not objects carry no messages
		_ = json.Unmarshal(body, &fields)
	}

	if err := json.Unmarshal(fields["messages"], &req.Messages); err != nil || len(req.Messages) == 0 {
		return req, http.StatusBadRequest, MsgMessagesRequired
	}
	if raw, ok := fields["model"]; ok {
		if err := json.Unmarshal(raw, &req.Model); err != nil {
			return req, http.StatusBadRequest, MsgModelType
		}
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}
	return req, 0, ""
}
