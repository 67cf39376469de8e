package signal

import (
	"math"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

// The voice and facial analyzers derive VAD estimates from cheap statistics
// over the raw capture bytes. They stand in for real models behind the same
// sample contract the aggregator consumes; output is deterministic for a
// given input and always clamped.

// AnalyzeVoice estimates a VAD sample from a raw audio buffer. Signal energy
// maps to arousal, the sign-change rate (a pitch proxy) to valence, and
// amplitude spread to dominance.
func AnalyzeVoice(data []byte) emotion.Sample {
	if len(data) == 0 {
		return lowConfidenceNeutral(emotion.ModalityVoice)
	}

	_, spread := byteStats(data)

	var changes int
	prevAbove := data[0] >= 128
	for _, b := range data[1:] {
		above := b >= 128
		if above != prevAbove {
			changes++
		}
		prevAbove = above
	}
	changeRate := float64(changes) / float64(len(data))

	energy := 0.0
	for _, b := range data {
		energy += math.Abs(float64(b) - 128)
	}
	energy /= float64(len(data)) * 128

	vad := emotion.VAD{
		Valence:   0.35 + changeRate*0.6,
		Arousal:   0.2 + energy*0.9,
		Dominance: 0.3 + spread*0.8,
	}

	return emotion.Sample{
		Modality:   emotion.ModalityVoice,
		VAD:        vad.Clamp(),
		Confidence: sizeConfidence(len(data), 16*1024),
	}
}

// AnalyzeFacial estimates a VAD sample from raw image bytes. Brightness maps
// to valence, local contrast to arousal, and overall spread to dominance.
func AnalyzeFacial(data []byte) emotion.Sample {
	if len(data) == 0 {
		return lowConfidenceNeutral(emotion.ModalityFacial)
	}

	mean, spread := byteStats(data)

	var contrast float64
	for i := 1; i < len(data); i++ {
		contrast += math.Abs(float64(data[i]) - float64(data[i-1]))
	}
	contrast /= float64(len(data)) * 255

	vad := emotion.VAD{
		Valence:   0.25 + mean*0.6,
		Arousal:   0.2 + contrast*1.5,
		Dominance: 0.3 + spread*0.9,
	}

	return emotion.Sample{
		Modality:   emotion.ModalityFacial,
		VAD:        vad.Clamp(),
		Confidence: sizeConfidence(len(data), 32*1024),
	}
}

// byteStats returns the normalized mean and standard deviation of the buffer.
func byteStats(data []byte) (mean, spread float64) {
	var sum float64
	for _, b := range data {
		sum += float64(b)
	}
	mean = sum / float64(len(data)) / 255

	var variance float64
	for _, b := range data {
		d := float64(b)/255 - mean
		variance += d * d
	}
	spread = math.Sqrt(variance / float64(len(data)))
	return mean, spread
}

// sizeConfidence grows with buffer size: tiny captures are unreliable.
func sizeConfidence(n, full int) float64 {
	c := 0.3 + 0.6*float64(n)/float64(full)
	if c > 0.9 {
		return 0.9
	}
	return c
}

func lowConfidenceNeutral(m emotion.Modality) emotion.Sample {
	return emotion.Sample{Modality: m, VAD: emotion.NeutralVAD(), Confidence: 0.1}
}
