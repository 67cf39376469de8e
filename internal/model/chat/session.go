package chat

import (
	"time"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

// Session captures one bounded interaction window: its lifecycle timestamps
// plus the accumulated emotion-analysis and chat history. Both histories are
// append-only; insertion order is call order.
type Session struct {
	ID             string           `json:"id"`
	AdvisorID      string           `json:"advisorId"`
	StartTime      time.Time        `json:"startTime"`
	EndTime        *time.Time       `json:"endTime,omitempty"`
	EmotionHistory []emotion.Record `json:"emotionHistory"`
	ChatHistory    []Message        `json:"chatHistory"`
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s Session) Clone() Session {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	out.EmotionHistory = append([]emotion.Record(nil), s.EmotionHistory...)
	out.ChatHistory = append([]Message(nil), s.ChatHistory...)
	return out
}
