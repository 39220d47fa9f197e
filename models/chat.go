package models

// Message roles as fed to the language backend. Ordering of messages in a
// session defines dialogue turn order.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single immutable dialogue turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionMeta holds the small mutable flag set attached to a session,
// separate from the message log.
type SessionMeta struct {
	CallRequested        bool   `json:"callRequested"`
	CallNotified         bool   `json:"callNotified"`
	CallTiming           string `json:"callTiming,omitempty"`
	LongDistanceNotified bool   `json:"longDistanceNotified"`
}

// ChatRequest is the body of a /chat turn.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse carries the assistant reply plus status markers for the
// front-end (degraded mode, cooldown, availability outcome).
type ChatResponse struct {
	Response          string `json:"response"`
	SessionID         string `json:"session_id"`
	Cooldown          bool   `json:"cooldown,omitempty"`
	Degraded          bool   `json:"degraded,omitempty"`
	AvailabilityCheck string `json:"availability_check,omitempty"`
	ManagerNotified   bool   `json:"manager_notified,omitempty"`
}
