package coze

// ChatStatus mirrors the remote service's chat state machine. The client only
// observes these states, it never invents its own.
type ChatStatus string

// Chat statuses reported by the remote service.
const (
	StatusCreated        ChatStatus = "created"
	StatusInProgress     ChatStatus = "in_progress"
	StatusCompleted      ChatStatus = "completed"
	StatusFailed         ChatStatus = "failed"
	StatusRequiresAction ChatStatus = "requires_action"
)

// Terminal reports whether the status ends the chat lifecycle.
func (s ChatStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Message roles and types used by the chat transcript.
const (
	RoleUser          = "user"
	RoleAssistant     = "assistant"
	MessageTypeAnswer = "answer"
)

// Chat identifies an in-flight remote chat job.
type Chat struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Status         ChatStatus `json:"status"`
}

// Message is one entry in a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatResult is the outcome of a completed non-streaming chat round trip.
type ChatResult struct {
	Answer         string
	ConversationID string
	Status         ChatStatus
}
