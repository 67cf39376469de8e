package text

import (
	"strings"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

// anchor is the VAD point a keyword bucket pulls the estimate toward.
type anchor struct {
	vad emotion.VAD
}

var bucketAnchors = map[emotion.Label]anchor{
	emotion.Happy:   {emotion.VAD{Valence: 0.85, Arousal: 0.55, Dominance: 0.6}},
	emotion.Excited: {emotion.VAD{Valence: 0.85, Arousal: 0.85, Dominance: 0.65}},
	emotion.Calm:    {emotion.VAD{Valence: 0.7, Arousal: 0.2, Dominance: 0.55}},
	emotion.Sad:     {emotion.VAD{Valence: 0.2, Arousal: 0.3, Dominance: 0.35}},
	emotion.Angry:   {emotion.VAD{Valence: 0.2, Arousal: 0.8, Dominance: 0.6}},
	emotion.Anxious: {emotion.VAD{Valence: 0.3, Arousal: 0.75, Dominance: 0.25}},
}

var keywordBuckets = map[emotion.Label][]string{
	emotion.Happy: {
		"happy", "glad", "great", "wonderful", "thanks", "thank you", "love",
		"pleased", "satisfied", "good news", "haha", "lol", ":)",
	},
	emotion.Excited: {
		"excited", "can't wait", "amazing", "awesome", "incredible", "wow",
		"thrilled", "hype", "unbelievable", "fantastic",
	},
	emotion.Calm: {
		"calm", "relaxed", "peaceful", "at ease", "serene", "settled",
		"unwind", "quiet", "gentle",
	},
	emotion.Sad: {
		"sad", "unhappy", "depressed", "down", "lonely", "miserable", "cry",
		"crying", "heartbroken", "hopeless", "disappointed", "grief",
	},
	emotion.Angry: {
		"angry", "furious", "mad", "annoyed", "rage", "pissed", "fed up",
		"outraged", "irritated", "hate",
	},
	emotion.Anxious: {
		"anxious", "worried", "nervous", "scared", "afraid", "panic",
		"overwhelmed", "stressed", "can't sleep", "dread", "on edge",
	},
}

// Exclamation marks push arousal upward on top of the keyword estimate.
const exclamationArousalBoost = 0.05

// Analyze estimates a VAD sample from free text using keyword buckets.
// Each bucket hit pulls the estimate toward that bucket's anchor point;
// confidence grows with the number of hits. Text with no matches yields the
// neutral midpoint at low confidence. The returned sample is clamped and
// safe to hand to the aggregator directly.
func Analyze(input string) emotion.Sample {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return neutralSample()
	}

	var totalHits int
	var valence, arousal, dominance float64

	for label, keywords := range keywordBuckets {
		hits := 0
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		a := bucketAnchors[label]
		weight := float64(hits)
		valence += weight * a.vad.Valence
		arousal += weight * a.vad.Arousal
		dominance += weight * a.vad.Dominance
		totalHits += hits
	}

	if totalHits == 0 {
		return neutralSample()
	}

	vad := emotion.VAD{
		Valence:   valence / float64(totalHits),
		Arousal:   arousal/float64(totalHits) + float64(strings.Count(input, "!"))*exclamationArousalBoost,
		Dominance: dominance / float64(totalHits),
	}

	confidence := 0.4 + 0.1*float64(totalHits)
	if confidence > 0.9 {
		confidence = 0.9
	}

	return emotion.Sample{
		Modality:   emotion.ModalityText,
		VAD:        vad.Clamp(),
		Confidence: confidence,
	}
}

func neutralSample() emotion.Sample {
	return emotion.Sample{
		Modality:   emotion.ModalityText,
		VAD:        emotion.NeutralVAD(),
		Confidence: 0.2,
	}
}
