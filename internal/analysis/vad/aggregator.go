package vad

import "github.com/liuwenjie/emomirror/backend/internal/model/emotion"

// Per-modality base weights reflecting the relative reliability of each
// channel. These are design constants, not user-configurable.
var modalityWeights = map[emotion.Modality]float64{
	emotion.ModalityFacial: 0.40,
	emotion.ModalityVoice:  0.35,
	emotion.ModalityText:   0.25,
}

// Weight returns the base reliability weight for a modality, 0 if unknown.
func Weight(m emotion.Modality) float64 {
	return modalityWeights[m]
}

// Aggregate combines per-modality samples into one VAD triple and an overall
// confidence. Each sample contributes with weight modalityWeight×confidence;
// the overall confidence is the unweighted mean of sample confidences.
//
// Callers pass at most one sample per modality; samples are assumed to be
// clamped into [0,1] by their producers and are not re-validated here.
//
// An empty set, or one whose effective weights sum to zero, yields the
// neutral midpoint with confidence 0 instead of dividing by zero.
func Aggregate(samples []emotion.Sample) (emotion.VAD, float64) {
	if len(samples) == 0 {
		return emotion.NeutralVAD(), 0
	}

	var totalWeight, confidenceSum float64
	var valence, arousal, dominance float64

	for _, s := range samples {
		w := modalityWeights[s.Modality] * s.Confidence
		valence += w * s.VAD.Valence
		arousal += w * s.VAD.Arousal
		dominance += w * s.VAD.Dominance
		totalWeight += w
		confidenceSum += s.Confidence
	}

	if totalWeight == 0 {
		return emotion.NeutralVAD(), 0
	}

	return emotion.VAD{
		Valence:   valence / totalWeight,
		Arousal:   arousal / totalWeight,
		Dominance: dominance / totalWeight,
	}, confidenceSum / float64(len(samples))
}
