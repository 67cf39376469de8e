package chat

import "time"

// Message persists individual conversation turns.
type Message struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	// EmotionRecordID references the analysis record active at send time.
	// The session owns the record; this is only a reference.
	EmotionRecordID string    `json:"emotionRecordId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Roles accepted for Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
