package vad

import (
	"math"
	"testing"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

func TestAggregateEmptyReturnsNeutral(t *testing.T) {
	got, conf := Aggregate(nil)
	if got != emotion.NeutralVAD() {
		t.Fatalf("expected neutral VAD, got %+v", got)
	}
	if conf != 0 {
		t.Fatalf("expected zero confidence, got %f", conf)
	}
}

func TestAggregateZeroConfidenceReturnsNeutral(t *testing.T) {
	samples := []emotion.Sample{
		{Modality: emotion.ModalityFacial, VAD: emotion.VAD{Valence: 0.9, Arousal: 0.9, Dominance: 0.9}, Confidence: 0},
		{Modality: emotion.ModalityText, VAD: emotion.VAD{Valence: 0.1, Arousal: 0.1, Dominance: 0.1}, Confidence: 0},
	}

	got, conf := Aggregate(samples)
	if got != emotion.NeutralVAD() {
		t.Fatalf("expected neutral VAD for zero total weight, got %+v", got)
	}
	if conf != 0 {
		t.Fatalf("expected zero confidence, got %f", conf)
	}
}

func TestAggregateSingleSampleIsIdentity(t *testing.T) {
	sample := emotion.Sample{
		Modality:   emotion.ModalityVoice,
		VAD:        emotion.VAD{Valence: 0.3, Arousal: 0.7, Dominance: 0.45},
		Confidence: 0.6,
	}

	got, conf := Aggregate([]emotion.Sample{sample})
	if !closeTo(got.Valence, 0.3) || !closeTo(got.Arousal, 0.7) || !closeTo(got.Dominance, 0.45) {
		t.Fatalf("single-sample aggregate should match the sample, got %+v", got)
	}
	if !closeTo(conf, 0.6) {
		t.Fatalf("expected confidence 0.6, got %f", conf)
	}
}

func TestAggregateThreeModalities(t *testing.T) {
	samples := []emotion.Sample{
		{Modality: emotion.ModalityFacial, VAD: emotion.VAD{Valence: 0.8, Arousal: 0.8, Dominance: 0.5}, Confidence: 0.9},
		{Modality: emotion.ModalityVoice, VAD: emotion.VAD{Valence: 0.6, Arousal: 0.5, Dominance: 0.5}, Confidence: 0.5},
		{Modality: emotion.ModalityText, VAD: emotion.VAD{Valence: 0.7, Arousal: 0.4, Dominance: 0.5}, Confidence: 0.8},
	}

	got, conf := Aggregate(samples)

	// Effective weights: 0.36, 0.175, 0.20; total 0.735.
	wantValence := (0.36*0.8 + 0.175*0.6 + 0.2*0.7) / 0.735
	wantArousal := (0.36*0.8 + 0.175*0.5 + 0.2*0.4) / 0.735
	if !closeTo(got.Valence, wantValence) {
		t.Fatalf("valence: got %f want %f", got.Valence, wantValence)
	}
	if !closeTo(got.Arousal, wantArousal) {
		t.Fatalf("arousal: got %f want %f", got.Arousal, wantArousal)
	}
	if !closeTo(got.Dominance, 0.5) {
		t.Fatalf("dominance: got %f want 0.5", got.Dominance)
	}
	if !closeTo(conf, (0.9+0.5+0.8)/3) {
		t.Fatalf("confidence: got %f", conf)
	}

	// The aggregated point sits in the high-valence/high-arousal region.
	if label := Classify(got, ProfileDisplay); label != emotion.Excited {
		t.Fatalf("expected excited for aggregated VAD %+v, got %s", got, label)
	}
}

func TestAggregatePreservesBounds(t *testing.T) {
	samples := []emotion.Sample{
		{Modality: emotion.ModalityFacial, VAD: emotion.VAD{Valence: 1, Arousal: 0, Dominance: 1}, Confidence: 1},
		{Modality: emotion.ModalityVoice, VAD: emotion.VAD{Valence: 0, Arousal: 1, Dominance: 0}, Confidence: 0.2},
		{Modality: emotion.ModalityText, VAD: emotion.VAD{Valence: 1, Arousal: 1, Dominance: 0}, Confidence: 0.7},
	}

	got, conf := Aggregate(samples)
	for name, val := range map[string]float64{
		"valence":    got.Valence,
		"arousal":    got.Arousal,
		"dominance":  got.Dominance,
		"confidence": conf,
	} {
		if val < 0 || val > 1 {
			t.Fatalf("%s out of bounds: %f", name, val)
		}
	}
}

func TestAggregateDeterministic(t *testing.T) {
	samples := []emotion.Sample{
		{Modality: emotion.ModalityFacial, VAD: emotion.VAD{Valence: 0.42, Arousal: 0.58, Dominance: 0.33}, Confidence: 0.77},
		{Modality: emotion.ModalityText, VAD: emotion.VAD{Valence: 0.61, Arousal: 0.2, Dominance: 0.9}, Confidence: 0.4},
	}

	first, firstConf := Aggregate(samples)
	second, secondConf := Aggregate(samples)
	if first != second || firstConf != secondConf {
		t.Fatalf("aggregation not deterministic: %+v/%f vs %+v/%f", first, firstConf, second, secondConf)
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
