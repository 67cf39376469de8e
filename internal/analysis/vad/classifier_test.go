package vad

import (
	"testing"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

func TestClassifyRegions(t *testing.T) {
	cases := []struct {
		name string
		vad  emotion.VAD
		want emotion.Label
	}{
		{"excited", emotion.VAD{Valence: 0.8, Arousal: 0.7, Dominance: 0.5}, emotion.Excited},
		{"calm", emotion.VAD{Valence: 0.7, Arousal: 0.2, Dominance: 0.5}, emotion.Calm},
		{"happy fallthrough", emotion.VAD{Valence: 0.65, Arousal: 0.5, Dominance: 0.5}, emotion.Happy},
		{"angry", emotion.VAD{Valence: 0.2, Arousal: 0.8, Dominance: 0.5}, emotion.Angry},
		{"sad", emotion.VAD{Valence: 0.2, Arousal: 0.2, Dominance: 0.5}, emotion.Sad},
		{"anxious", emotion.VAD{Valence: 0.5, Arousal: 0.7, Dominance: 0.2}, emotion.Anxious},
		{"neutral", emotion.VAD{Valence: 0.5, Arousal: 0.5, Dominance: 0.5}, emotion.Neutral},
	}

	for _, tc := range cases {
		if got := Classify(tc.vad, ProfileDisplay); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyOrderMatters(t *testing.T) {
	// High valence and arousal sits in both the excited and happy regions;
	// the first rule must win.
	v := emotion.VAD{Valence: 0.9, Arousal: 0.9, Dominance: 0.9}
	if got := Classify(v, ProfileDisplay); got != emotion.Excited {
		t.Fatalf("expected excited to win over happy, got %s", got)
	}

	// Low valence with high arousal matches angry before anxious even with
	// low dominance.
	v = emotion.VAD{Valence: 0.1, Arousal: 0.9, Dominance: 0.1}
	if got := Classify(v, ProfileDisplay); got != emotion.Angry {
		t.Fatalf("expected angry to win over anxious, got %s", got)
	}
}

func TestClassifyProfilesDiverge(t *testing.T) {
	v := emotion.VAD{Valence: 0.75, Arousal: 0.7, Dominance: 0.5}
	if got := Classify(v, ProfileDisplay); got != emotion.Excited {
		t.Fatalf("display profile: got %s", got)
	}
	if got := Classify(v, ProfileAdvice); got != emotion.Happy {
		t.Fatalf("advice profile: got %s", got)
	}
}

func TestClassifyTotalAndDeterministic(t *testing.T) {
	known := map[emotion.Label]bool{
		emotion.Neutral: true, emotion.Happy: true, emotion.Sad: true,
		emotion.Angry: true, emotion.Anxious: true, emotion.Excited: true,
		emotion.Calm: true, emotion.Surprised: true,
	}

	const step = 0.1
	for v := 0.0; v <= 1.0; v += step {
		for a := 0.0; a <= 1.0; a += step {
			for d := 0.0; d <= 1.0; d += step {
				in := emotion.VAD{Valence: v, Arousal: a, Dominance: d}
				first := Classify(in, ProfileDisplay)
				if !known[first] {
					t.Fatalf("unknown label %q for %+v", first, in)
				}
				if second := Classify(in, ProfileDisplay); second != first {
					t.Fatalf("nondeterministic classification for %+v", in)
				}
			}
		}
	}
}
