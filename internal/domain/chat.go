package domain

// ChatRole distinguishes who authored a chat message.
type ChatRole string

const (
	// RoleUser marks a message typed by the mother.
	RoleUser ChatRole = "user"
	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in a chat session's append-only log.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
