package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/varsilias/ollama-chat-relay/internal/session"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

var (
	ErrEmptyInput = errors.New("chat: empty input")
	ErrBusy       = errors.New("chat: a reply is still pending")
)

type Controller struct {
	log        *slog.Logger
	eng        Engine
	transcript *session.Transcript
	onChange   []func()
	wg         sync.WaitGroup
}

type Option func(*Controller)

// WithOnChange registers fn to run after every transcript or loading change.
// fn runs on the goroutine that made the change.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = append(c.onChange, fn) }
}

func NewController(log *slog.Logger, eng Engine, transcript *session.Transcript, opts ...Option) *Controller {
	c := &Controller{log: log, eng: eng, transcript: transcript}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Transcript() *session.Transcript { return c.transcript }

// Submit runs a full turn and returns once the reply is in the transcript.
func (c *Controller) Submit(ctx context.Context, input string) error {
	history, err := c.begin(input)
	if err != nil {
		return err
	}
	c.complete(ctx, history)
	return nil
}

// Send appends the user message and returns; the round trip continues in the
// background and is not cancelled with ctx.
func (c *Controller) Send(ctx context.Context, input string) error {
	history, err := c.begin(input)
	if err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.complete(context.WithoutCancel(ctx), history)
	}()
	return nil
}

// Wait blocks until every round trip started by Send has finished.
func (c *Controller) Wait() { c.wg.Wait() }

func (c *Controller) begin(input string) ([]types.Message, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}
	history, ok := c.transcript.Begin(types.Message{Role: types.RoleUser, Content: text})
	if !ok {
		return nil, ErrBusy
	}
	c.notify()
	return history, nil
}

// complete asks the engine for a reply and always leaves the loading state,
// whichever way the call ends.
func (c *Controller) complete(ctx context.Context, history []types.Message) {
	defer func() {
		c.transcript.SetLoading(false)
		c.notify()
	}()

	start := time.Now()
	res, err := c.eng.Chat(ctx, history)
	if err != nil {
		c.log.Error("chat round trip failed", "err", err, "messages", len(history))
		c.transcript.Append(types.Message{Role: types.RoleAssistant, Content: ErrorWarning})
		return
	}
	reply := AssistantReply(res)
	c.log.Info("chat reply", "latency_ms", time.Since(start).Milliseconds(), "chars", len(reply.Content))
	c.transcript.Append(reply)
}

func (c *Controller) notify() {
	for _, fn := range c.onChange {
		fn()
	}
}
