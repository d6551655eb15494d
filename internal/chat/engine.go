package chat

import (
	"context"

	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

// Engine carries one round trip: the full transcript goes out, the relay's
// response comes back.
type Engine interface {
	Chat(ctx context.Context, messages []types.Message) (*types.ChatResponse, error)
}

const (
	NoResponse   = "[No response]"
	ErrorWarning = "⚠️ Error contacting server."
)

// AssistantReply picks the message to append from a relay response: the
// direct message if present, else the first assistant entry of the alternate
// collection, else a placeholder.
func AssistantReply(res *types.ChatResponse) types.Message {
	if res != nil {
		if res.Message != nil {
			return *res.Message
		}
		for _, m := range res.Messages {
			if m.Role == types.RoleAssistant {
				return m
			}
		}
	}
	return types.Message{Role: types.RoleAssistant, Content: NoResponse}
}
