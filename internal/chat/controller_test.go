package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/varsilias/ollama-chat-relay/internal/logging"
	"github.com/varsilias/ollama-chat-relay/internal/session"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Chat(ctx context.Context, messages []types.Message) (*types.ChatResponse, error) {
	args := m.Called(ctx, messages)
	res, _ := args.Get(0).(*types.ChatResponse)
	return res, args.Error(1)
}

const systemPrompt = "You are a helpful assistant."

func newController(eng Engine, opts ...Option) *Controller {
	return NewController(logging.Discard(), eng, session.NewTranscript(systemPrompt), opts...)
}

func TestSubmit_AppendsUserAndReply(t *testing.T) {
	eng := new(MockEngine)
	want := []types.Message{
		{Role: types.RoleSystem, Content: systemPrompt},
		{Role: types.RoleUser, Content: "hello"},
	}
	eng.On("Chat", mock.Anything, want).Return(&types.ChatResponse{
		Message: &types.Message{Role: types.RoleAssistant, Content: "hi"},
	}, nil).Once()

	c := newController(eng)
	require.NoError(t, c.Submit(context.Background(), "  hello \n"))

	eng.AssertExpectations(t)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "hi"},
	}, c.Transcript().Visible())
	assert.False(t, c.Transcript().Loading())
}

func TestSubmit_SendsFullHistoryEveryTurn(t *testing.T) {
	eng := new(MockEngine)
	eng.On("Chat", mock.Anything, mock.Anything).Return(&types.ChatResponse{
		Message: &types.Message{Role: types.RoleAssistant, Content: "ok"},
	}, nil)

	c := newController(eng)
	require.NoError(t, c.Submit(context.Background(), "one"))
	require.NoError(t, c.Submit(context.Background(), "two"))

	require.Len(t, eng.Calls, 2)
	second := eng.Calls[1].Arguments.Get(1).([]types.Message)
	assert.Equal(t, []types.Message{
		{Role: types.RoleSystem, Content: systemPrompt},
		{Role: types.RoleUser, Content: "one"},
		{Role: types.RoleAssistant, Content: "ok"},
		{Role: types.RoleUser, Content: "two"},
	}, second)
}

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	eng := new(MockEngine)
	c := newController(eng)

	for _, in := range []string{"", "   ", "\n\t"} {
		assert.ErrorIs(t, c.Submit(context.Background(), in), ErrEmptyInput)
	}

	eng.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
	assert.Len(t, c.Transcript().Messages(), 1)
	assert.False(t, c.Transcript().Loading())
}

func TestSubmit_FailureAppendsWarning(t *testing.T) {
	eng := new(MockEngine)
	eng.On("Chat", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	c := newController(eng)
	require.NoError(t, c.Submit(context.Background(), "hello"))

	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: ErrorWarning},
	}, c.Transcript().Visible())
	assert.False(t, c.Transcript().Loading())
}

func TestSubmit_PanickingEngineStillClearsLoading(t *testing.T) {
	eng := new(MockEngine)
	eng.On("Chat", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("engine exploded") })

	c := newController(eng)
	assert.Panics(t, func() { _ = c.Submit(context.Background(), "hello") })

	assert.False(t, c.Transcript().Loading())
	assert.Equal(t, "hello", c.Transcript().Visible()[0].Content)
}

// blockingEngine holds every call until release is closed.
type blockingEngine struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingEngine) Chat(ctx context.Context, messages []types.Message) (*types.ChatResponse, error) {
	close(b.started)
	<-b.release
	return &types.ChatResponse{Message: &types.Message{Role: types.RoleAssistant, Content: "late"}}, nil
}

func TestSend_BusyWhileInFlight(t *testing.T) {
	eng := &blockingEngine{started: make(chan struct{}), release: make(chan struct{})}
	c := newController(eng)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Send(ctx, "first"))
	<-eng.started
	cancel()

	visible, loading := c.Transcript().Snapshot()
	assert.True(t, loading)
	assert.Equal(t, []types.Message{{Role: types.RoleUser, Content: "first"}}, visible)

	assert.ErrorIs(t, c.Send(context.Background(), "second"), ErrBusy)

	close(eng.release)
	c.Wait()

	visible, loading = c.Transcript().Snapshot()
	assert.False(t, loading)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "first"},
		{Role: types.RoleAssistant, Content: "late"},
	}, visible)
}

func TestWithOnChange(t *testing.T) {
	eng := new(MockEngine)
	eng.On("Chat", mock.Anything, mock.Anything).Return(&types.ChatResponse{}, nil)

	var mu sync.Mutex
	var states []bool
	var c *Controller
	c = newController(eng, WithOnChange(func() {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, c.Transcript().Loading())
	}))

	require.NoError(t, c.Submit(context.Background(), "hello"))

	assert.Equal(t, []bool{true, false}, states)
	assert.Equal(t, NoResponse, c.Transcript().Visible()[1].Content)
}

func TestAssistantReply(t *testing.T) {
	tests := []struct {
		name string
		res  *types.ChatResponse
		want types.Message
	}{
		{
			name: "direct message",
			res:  &types.ChatResponse{Message: &types.Message{Role: types.RoleAssistant, Content: "hi"}},
			want: types.Message{Role: types.RoleAssistant, Content: "hi"},
		},
		{
			name: "first assistant in messages",
			res: &types.ChatResponse{Messages: []types.Message{
				{Role: types.RoleUser, Content: "q"},
				{Role: types.RoleAssistant, Content: "a1"},
				{Role: types.RoleAssistant, Content: "a2"},
			}},
			want: types.Message{Role: types.RoleAssistant, Content: "a1"},
		},
		{
			name: "direct message wins",
			res: &types.ChatResponse{
				Message:  &types.Message{Role: types.RoleAssistant, Content: "direct"},
				Messages: []types.Message{{Role: types.RoleAssistant, Content: "alt"}},
			},
			want: types.Message{Role: types.RoleAssistant, Content: "direct"},
		},
		{
			name: "no assistant anywhere",
			res:  &types.ChatResponse{Messages: []types.Message{{Role: types.RoleUser, Content: "q"}}},
			want: types.Message{Role: types.RoleAssistant, Content: NoResponse},
		},
		{
			name: "nil response",
			want: types.Message{Role: types.RoleAssistant, Content: NoResponse},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AssistantReply(tc.res))
		})
	}
}
