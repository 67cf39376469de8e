package ai

import (
	"strings"
	"testing"

	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

func TestBuildSystemPromptWithoutMood(t *testing.T) {
	profile := advisor.Seed()[0]

	prompt := BuildSystemPrompt(profile, nil)
	if !strings.Contains(prompt, profile.Name) {
		t.Fatalf("prompt missing advisor name: %s", prompt)
	}
	if strings.Contains(prompt, "Current emotion analysis") {
		t.Fatal("prompt should omit the emotion section without a record")
	}
}

func TestBuildSystemPromptWithMood(t *testing.T) {
	profile := advisor.Seed()[0]
	rec := emotion.Record{
		VAD:        emotion.VAD{Valence: 0.2, Arousal: 0.3, Dominance: 0.4},
		Emotion:    emotion.Sad,
		Confidence: 0.8,
		MediaType:  emotion.MediaText,
	}

	prompt := BuildSystemPrompt(profile, &rec)
	if !strings.Contains(prompt, "feeling low") {
		t.Fatalf("prompt missing emotion description: %s", prompt)
	}
	if !strings.Contains(prompt, "valence 0.20") {
		t.Fatalf("prompt missing measured affect: %s", prompt)
	}
	if advice := profile.AdviceFor(emotion.Sad); advice != "" && !strings.Contains(prompt, advice) {
		t.Fatalf("prompt missing advice text: %s", prompt)
	}
}
