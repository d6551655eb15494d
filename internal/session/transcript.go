package session

import (
	"sync"

	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

// Transcript is the in-memory conversation of one client plus its loading
// flag. It lives as long as the process.
type Transcript struct {
	mu      sync.RWMutex
	msgs    []types.Message
	loading bool
}

// NewTranscript seeds the conversation with a single system message.
func NewTranscript(systemPrompt string) *Transcript {
	return &Transcript{
		msgs: []types.Message{{Role: types.RoleSystem, Content: systemPrompt}},
	}
}

func (t *Transcript) Append(m types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, m)
}

// Begin appends m and enters the loading state in one step. It reports false
// and changes nothing when a round trip is already in flight. The returned
// slice is a copy of the full transcript including m.
func (t *Transcript) Begin(m types.Message) ([]types.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return nil, false
	}
	t.msgs = append(t.msgs, m)
	t.loading = true
	return t.copyLocked(), true
}

func (t *Transcript) SetLoading(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = v
}

func (t *Transcript) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// Messages returns a copy of the whole transcript, system entries included.
func (t *Transcript) Messages() []types.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyLocked()
}

// Visible returns the transcript without system entries, in order.
func (t *Transcript) Visible() []types.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visibleLocked()
}

// Snapshot returns the visible messages and loading flag read together.
func (t *Transcript) Snapshot() ([]types.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visibleLocked(), t.loading
}

func (t *Transcript) visibleLocked() []types.Message {
	out := make([]types.Message, 0, len(t.msgs))
	for _, m := range t.msgs {
		if m.Role != types.RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

func (t *Transcript) copyLocked() []types.Message {
	out := make([]types.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}
