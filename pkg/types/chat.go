package types

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is what a client posts to the relay's /api/chat.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
}

// ChatResponse holds the fields a client reads from the relayed Ollama
// payload. Anything else in the body is ignored.
type ChatResponse struct {
	Message  *Message  `json:"message,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

type HealthResponse struct {
	OK    bool   `json:"ok"`
	Model string `json:"model"`
}
