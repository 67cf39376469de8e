package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	chatModel "github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
)

func setup(withSession bool) (*Handler, *sessionService.Store) {
	sessions := sessionService.NewStore(nil)
	advisors := advisor.NewMemoryStore(advisor.Seed())
	handler := New(nil, sessions, advisors)

	if withSession {
		sessions.Start(context.Background(), "companion")
	}
	return handler, sessions
}

func TestStreamWithoutSession(t *testing.T) {
	handler, _ := setup(false)
	resp := httptest.NewRecorder()

	err := handler.HandleStreamRequest(context.Background(), resp, "hello")

	if !errors.Is(err, sessionService.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if !strings.Contains(resp.Body.String(), "no active session") {
		t.Fatalf("expected error event in stream, got %q", resp.Body.String())
	}
}

func TestStreamCannedReplySavesBothTurns(t *testing.T) {
	handler, sessions := setup(true)
	resp := httptest.NewRecorder()

	if err := handler.HandleStreamRequest(context.Background(), resp, "how do I feel?"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	if !strings.Contains(body, `"event":"start"`) {
		t.Fatalf("expected start event, got %q", body)
	}
	if !strings.Contains(body, `"event":"end"`) {
		t.Fatalf("expected end event, got %q", body)
	}

	sess, _ := sessions.Active()
	if len(sess.ChatHistory) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(sess.ChatHistory))
	}
	if sess.ChatHistory[0].Role != chatModel.RoleUser {
		t.Fatalf("expected first turn to be the user, got %q", sess.ChatHistory[0].Role)
	}
	if sess.ChatHistory[1].Role != chatModel.RoleAssistant {
		t.Fatalf("expected second turn to be the assistant, got %q", sess.ChatHistory[1].Role)
	}
}

func TestStreamSkipsAlreadySavedUserMessage(t *testing.T) {
	handler, sessions := setup(true)

	if _, err := sessions.AddChatMessage(context.Background(), chatModel.Message{
		Role:    chatModel.RoleUser,
		Content: "already saved",
	}); err != nil {
		t.Fatalf("AddChatMessage err: %v", err)
	}

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "already saved"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	sess, _ := sessions.Active()
	users := 0
	for _, msg := range sess.ChatHistory {
		if msg.Role == chatModel.RoleUser {
			users++
		}
	}
	if users != 1 {
		t.Fatalf("expected a single user turn, got %d", users)
	}
}

func TestStreamEmitsEmotionEventWithMood(t *testing.T) {
	handler, sessions := setup(true)

	if _, err := sessions.AddEmotionAnalysis(context.Background(), emotion.Record{
		VAD:       emotion.VAD{Valence: 0.2, Arousal: 0.3, Dominance: 0.4},
		Emotion:   emotion.Sad,
		MediaType: emotion.MediaText,
	}); err != nil {
		t.Fatalf("AddEmotionAnalysis err: %v", err)
	}

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "I feel down"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	if !strings.Contains(body, "event: emotion") {
		t.Fatalf("expected emotion SSE event, got %q", body)
	}
	if !strings.Contains(body, `"emotion":"sad"`) {
		t.Fatalf("expected sad label in emotion event, got %q", body)
	}
}

func TestCannedReplyPrefersAdvice(t *testing.T) {
	handler, _ := setup(true)
	profile, _ := advisor.NewMemoryStore(advisor.Seed()).FindByID("companion")

	mood := &emotion.Record{Emotion: emotion.Sad}
	if got := handler.cannedReply(profile, mood); got != profile.AdviceFor(emotion.Sad) {
		t.Fatalf("expected advice text, got %q", got)
	}
	if got := handler.cannedReply(profile, nil); got != profile.OpeningLine {
		t.Fatalf("expected opening line without mood, got %q", got)
	}
}
