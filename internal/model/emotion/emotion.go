package emotion

import "time"

// VAD represents affect on the valence/arousal/dominance axes, each in [0,1].
type VAD struct {
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

// Clamp returns a copy with every component forced into [0,1].
func (v VAD) Clamp() VAD {
	return VAD{
		Valence:   clamp01(v.Valence),
		Arousal:   clamp01(v.Arousal),
		Dominance: clamp01(v.Dominance),
	}
}

// NeutralVAD is the midpoint used when no signal is available.
func NeutralVAD() VAD {
	return VAD{Valence: 0.5, Arousal: 0.5, Dominance: 0.5}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Label is a discrete emotion tag used for display and advice text.
type Label string

const (
	Neutral   Label = "neutral"
	Happy     Label = "happy"
	Sad       Label = "sad"
	Angry     Label = "angry"
	Anxious   Label = "anxious"
	Excited   Label = "excited"
	Calm      Label = "calm"
	Surprised Label = "surprised"
)

// Modality identifies one input channel contributing to emotion inference.
type Modality string

const (
	ModalityFacial Modality = "facial"
	ModalityVoice  Modality = "voice"
	ModalityText   Modality = "text"
)

// MediaType tags the originating source of an analysis record.
type MediaType string

const (
	MediaText       MediaType = "text"
	MediaAudio      MediaType = "audio"
	MediaImage      MediaType = "image"
	MediaRealtime   MediaType = "realtime"
	MediaMultimodal MediaType = "multimodal"
)

// Sample is one per-modality measurement handed to the aggregator.
// Producers clamp VAD and Confidence into [0,1] before submitting.
type Sample struct {
	Modality   Modality `json:"modality"`
	VAD        VAD      `json:"vad"`
	Confidence float64  `json:"confidence"`
}

// Record is one immutable analysis result appended to a session.
type Record struct {
	ID         string    `json:"id"`
	VAD        VAD       `json:"vad"`
	Emotion    Label     `json:"emotion"`
	Confidence float64   `json:"confidence"`
	MediaType  MediaType `json:"mediaType"`
	CreatedAt  time.Time `json:"createdAt"`
}
