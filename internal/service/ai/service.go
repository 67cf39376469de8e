package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/liuwenjie/emomirror/backend/internal/config"
	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

// Service encapsulates AI-powered chat functionality.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled indicates whether SSE streaming output is on.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateResponse produces an assistant reply shaped by the advisor profile
// and the user's current emotional state.
func (s *Service) GenerateResponse(ctx context.Context, sessionID string, profile advisor.Profile, messages []chat.Message, userMessage string, mood *emotion.Record) (*schema.Message, error) {
	input := s.buildChainInput(profile, messages, userMessage, mood)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated response for session=%s, advisor=%s, length=%d", sessionID, profile.ID, len(response.Content))
	return response, nil
}

// StreamResponse streams reply chunks via the configured chain.
func (s *Service) StreamResponse(ctx context.Context, profile advisor.Profile, messages []chat.Message, userMessage string, mood *emotion.Record) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input := s.buildChainInput(profile, messages, userMessage, mood)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}

	return stream, nil
}

func (s *Service) buildChainInput(profile advisor.Profile, messages []chat.Message, userMessage string, mood *emotion.Record) map[string]any {
	return map[string]any{
		"system":  BuildSystemPrompt(profile, mood),
		"history": s.buildHistoryMessages(messages),
		"query":   userMessage,
	}
}

// BuildSystemPrompt combines the advisor profile with the latest emotion
// analysis into one system prompt.
func BuildSystemPrompt(profile advisor.Profile, mood *emotion.Record) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "You are %s, %s. Tone: %s.\n%s\nOpening line for reference: %s",
		profile.Name, profile.Title, profile.Tone, profile.PromptHint, profile.OpeningLine)

	if mood == nil || mood.Emotion == "" {
		return builder.String()
	}

	builder.WriteString("\n\nCurrent emotion analysis of the user:\n")
	if desc := describeEmotion(mood.Emotion); desc != "" {
		builder.WriteString(desc)
	} else {
		fmt.Fprintf(&builder, "emotion label=%s", string(mood.Emotion))
	}
	fmt.Fprintf(&builder, "\nMeasured affect: valence %.2f, arousal %.2f, dominance %.2f (confidence %.2f, source %s).",
		mood.VAD.Valence, mood.VAD.Arousal, mood.VAD.Dominance, mood.Confidence, mood.MediaType)

	if advice := profile.AdviceFor(mood.Emotion); advice != "" {
		builder.WriteString("\nGuidance to weave in naturally: ")
		builder.WriteString(advice)
	}

	builder.WriteString("\nStay in character, acknowledge the emotional state first, and keep the reply concise.")
	return builder.String()
}

func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}

func describeEmotion(label emotion.Label) string {
	switch label {
	case emotion.Happy:
		return "The user is in a positive, content state; keep the reply upbeat and affirming."
	case emotion.Sad:
		return "The user is feeling low; respond gently, with warmth and understanding."
	case emotion.Angry:
		return "The user is irritated or upset; stay steady and de-escalate before solving."
	case emotion.Anxious:
		return "The user is worried or tense; be reassuring and help break things down."
	case emotion.Excited:
		return "The user is energized and enthusiastic; match the energy and help focus it."
	case emotion.Calm:
		return "The user is relaxed and settled; keep a measured, unhurried tone."
	case emotion.Surprised:
		return "The user was caught off guard; help them process before moving on."
	case emotion.Neutral:
		return "The user is at a steady baseline; keep the tone clear, polite, and natural."
	default:
		return ""
	}
}
