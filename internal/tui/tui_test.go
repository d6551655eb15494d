package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

func TestFormat(t *testing.T) {
	out := Format([]types.Message{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "hi"},
	}, false)

	assert.Equal(t, "[red::b]You:[-:-:-]\nhello\n\n[green::b]AI:[-:-:-]\nhi\n\n", out)
}

func TestFormat_Loading(t *testing.T) {
	out := Format([]types.Message{{Role: types.RoleUser, Content: "hello"}}, true)
	assert.Contains(t, out, "…thinking…")
}

func TestFormat_EscapesMarkup(t *testing.T) {
	out := Format([]types.Message{{Role: types.RoleAssistant, Content: "use [red]x[white]"}}, false)
	assert.NotContains(t, out, "[red]x")
}
