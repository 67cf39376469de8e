package text

import (
	"testing"

	"github.com/liuwenjie/emomirror/backend/internal/analysis/vad"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

func TestAnalyzeSadText(t *testing.T) {
	sample := Analyze("I feel so lonely and depressed today, I just want to cry")
	if sample.Modality != emotion.ModalityText {
		t.Fatalf("unexpected modality %s", sample.Modality)
	}
	if sample.VAD.Valence >= 0.4 {
		t.Fatalf("expected low valence for sad text, got %f", sample.VAD.Valence)
	}
	if sample.Confidence <= 0.4 {
		t.Fatalf("expected boosted confidence for multiple hits, got %f", sample.Confidence)
	}
	if got := vad.Classify(sample.VAD, vad.ProfileDisplay); got != emotion.Sad {
		t.Fatalf("expected sad classification, got %s", got)
	}
}

func TestAnalyzeExcitedText(t *testing.T) {
	sample := Analyze("This is amazing, I'm so excited!!! Can't wait!")
	if sample.VAD.Valence <= 0.7 || sample.VAD.Arousal <= 0.6 {
		t.Fatalf("expected high valence/arousal, got %+v", sample.VAD)
	}
	if got := vad.Classify(sample.VAD, vad.ProfileDisplay); got != emotion.Excited {
		t.Fatalf("expected excited classification, got %s", got)
	}
}

func TestAnalyzeEmptyTextIsNeutral(t *testing.T) {
	sample := Analyze("   ")
	if sample.VAD != emotion.NeutralVAD() {
		t.Fatalf("expected neutral VAD, got %+v", sample.VAD)
	}
	if sample.Confidence != 0.2 {
		t.Fatalf("expected low confidence, got %f", sample.Confidence)
	}
}

func TestAnalyzeUnmatchedTextIsNeutral(t *testing.T) {
	sample := Analyze("the quarterly report is attached below")
	if sample.VAD != emotion.NeutralVAD() {
		t.Fatalf("expected neutral VAD for unmatched text, got %+v", sample.VAD)
	}
}

func TestAnalyzeOutputClamped(t *testing.T) {
	// Heavy exclamation use must not push arousal past 1.
	sample := Analyze("wow amazing awesome!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!")
	if sample.VAD.Arousal > 1 {
		t.Fatalf("arousal not clamped: %f", sample.VAD.Arousal)
	}
}
