package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	chatModel "github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	aiService "github.com/liuwenjie/emomirror/backend/internal/service/ai"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler manages streaming assistant responses via Server-Sent Events.
type Handler struct {
	ai       *aiService.Service
	sessions *sessionService.Store
	advisors advisor.Store
}

// New creates a new stream handler. ai may be nil; replies then degrade to
// canned advice text.
func New(ai *aiService.Service, sessions *sessionService.Store, advisors advisor.Store) *Handler {
	return &Handler{ai: ai, sessions: sessions, advisors: advisors}
}

// Response represents a streaming response chunk.
type Response struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest processes one streamed assistant reply for the active
// session. The session store is only mutated after the model call resolves,
// so a failed generation leaves no partial assistant turn behind.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	sess, ok := h.sessions.Active()
	if !ok {
		h.sendError(w, flusher, "no active session")
		return sessionService.ErrNoActiveSession
	}

	profile, ok := h.advisors.FindByID(sess.AdvisorID)
	if !ok {
		h.sendError(w, flusher, fmt.Sprintf("advisor %s not found", sess.AdvisorID))
		return fmt.Errorf("advisor %s not found", sess.AdvisorID)
	}

	var mood *emotion.Record
	if rec, recOK := h.sessions.LatestRecord(); recOK {
		mood = &rec
	}

	messages := sess.ChatHistory

	// Persist the user turn unless the client already saved it via REST.
	if !hasMatchingUserMessage(messages, userMessage) {
		userMsg := chatModel.Message{Role: chatModel.RoleUser, Content: userMessage}
		if mood != nil {
			userMsg.EmotionRecordID = mood.ID
		}
		saved, err := h.sessions.AddChatMessage(ctx, userMsg)
		if err != nil {
			log.Printf("failed to save user message: %v", err)
		} else {
			messages = append(messages, saved)
		}
	}

	h.send(w, flusher, Response{
		Event:     "start",
		SessionID: sess.ID,
		Content:   fmt.Sprintf("%s is replying:", profile.Name),
	})

	content, err := h.dispatch(ctx, w, flusher, sess.ID, profile, messages, userMessage, mood)
	if err != nil {
		h.sendError(w, flusher, fmt.Sprintf("reply generation failed: %v", err))
		return err
	}

	assistantMsg := chatModel.Message{
		Role:    chatModel.RoleAssistant,
		Content: content,
	}
	if mood != nil {
		assistantMsg.EmotionRecordID = mood.ID
	}
	if _, err := h.sessions.AddChatMessage(ctx, assistantMsg); err != nil {
		log.Printf("failed to save assistant message: %v", err)
	}

	if mood != nil {
		utils.SendSSEEvent(w, flusher, "emotion", map[string]any{
			"emotion":    mood.Emotion,
			"vad":        mood.VAD,
			"confidence": mood.Confidence,
		})
	}

	h.send(w, flusher, Response{
		Event:     "end",
		SessionID: sess.ID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s, advisor=%s", sess.ID, profile.ID)
	return nil
}

// dispatch produces the assistant reply: streamed or single-shot through
// the AI service when configured, canned advice text otherwise.
func (h *Handler) dispatch(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, profile advisor.Profile, messages []chatModel.Message, userMessage string, mood *emotion.Record) (string, error) {
	if h.ai == nil {
		content := h.cannedReply(profile, mood)
		h.send(w, flusher, Response{Event: "message", SessionID: sessionID, Content: content})
		return content, nil
	}

	if h.ai.StreamingEnabled() {
		return h.streamReply(ctx, w, flusher, sessionID, profile, messages, userMessage, mood)
	}

	response, err := h.ai.GenerateResponse(ctx, sessionID, profile, messages, userMessage, mood)
	if err != nil {
		return "", err
	}

	h.send(w, flusher, Response{Event: "message", SessionID: sessionID, Content: response.Content})
	return response.Content, nil
}

func (h *Handler) streamReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, profile advisor.Profile, messages []chatModel.Message, userMessage string, mood *emotion.Record) (string, error) {
	stream, err := h.ai.StreamResponse(ctx, profile, messages, userMessage, mood)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.send(w, flusher, Response{Event: "delta", SessionID: sessionID, Content: chunk.Content})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}

	h.send(w, flusher, Response{Event: "message", SessionID: sessionID, Content: response.Content})
	return response.Content, nil
}

// cannedReply is the degraded-mode answer when no chat model is configured.
func (h *Handler) cannedReply(profile advisor.Profile, mood *emotion.Record) string {
	if mood == nil {
		return profile.OpeningLine
	}
	if advice := profile.AdviceFor(mood.Emotion); advice != "" {
		return advice
	}
	return profile.OpeningLine
}

func hasMatchingUserMessage(messages []chatModel.Message, content string) bool {
	if len(messages) == 0 {
		return false
	}

	last := messages[len(messages)-1]
	return last.Role == chatModel.RoleUser && last.Content == content
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, response Response) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.send(w, flusher, Response{Event: "error", Error: errorMsg})
}
