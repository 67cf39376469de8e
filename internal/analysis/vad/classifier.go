package vad

import "github.com/liuwenjie/emomirror/backend/internal/model/emotion"

// Profile selects one of the two threshold variants found in the product.
// The display path and the advice path historically used slightly different
// cutoffs for the high-valence/high-arousal region; both are kept as named
// variants rather than merged.
type Profile int

const (
	// ProfileDisplay drives iconography and ambient coloring.
	ProfileDisplay Profile = iota
	// ProfileAdvice drives the guidance/advice text selection.
	ProfileAdvice
)

// Classify maps one VAD triple to exactly one discrete label using a fixed,
// ordered rule list; earlier rules win because the regions overlap. The
// function is pure and total: any real-valued input yields a label, though
// producers are expected to clamp components into [0,1].
func Classify(v emotion.VAD, profile Profile) emotion.Label {
	switch profile {
	case ProfileAdvice:
		if v.Valence > 0.65 && v.Arousal > 0.65 {
			return emotion.Happy
		}
	default:
		if v.Valence > 0.7 && v.Arousal > 0.6 {
			return emotion.Excited
		}
	}

	switch {
	case v.Valence > 0.6 && v.Arousal < 0.4:
		return emotion.Calm
	case v.Valence > 0.6:
		return emotion.Happy
	case v.Valence < 0.4 && v.Arousal > 0.6:
		return emotion.Angry
	case v.Valence < 0.4 && v.Arousal < 0.4:
		return emotion.Sad
	case v.Dominance < 0.4 && v.Arousal > 0.6:
		return emotion.Anxious
	default:
		return emotion.Neutral
	}
}
