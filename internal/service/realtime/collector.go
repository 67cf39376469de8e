package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/liuwenjie/emomirror/backend/internal/analysis/vad"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
)

// Update is one aggregated result pushed to the collector's consumer.
type Update struct {
	VAD        emotion.VAD   `json:"vad"`
	Emotion    emotion.Label `json:"emotion"`
	Confidence float64       `json:"confidence"`
	Modalities int           `json:"modalities"`
}

type timedSample struct {
	sample emotion.Sample
	seen   time.Time
}

// Collector is the shared sample set behind a realtime analysis feed. Each
// modality holds at most one live sample; a newer submission replaces the
// older one. Samples expire after the window so a stalled modality stops
// influencing the aggregate. One mutex serializes submissions from
// concurrently arriving modality callbacks.
type Collector struct {
	mu      sync.Mutex
	samples map[emotion.Modality]timedSample
	window  time.Duration

	now func() time.Time
}

// NewCollector creates a collector whose samples expire after window.
func NewCollector(window time.Duration) *Collector {
	if window <= 0 {
		window = 5 * time.Second
	}
	return &Collector{
		samples: make(map[emotion.Modality]timedSample),
		window:  window,
		now:     time.Now,
	}
}

// Submit replaces the modality's live sample. The producer is responsible
// for clamping before submission.
func (c *Collector) Submit(sample emotion.Sample) {
	c.mu.Lock()
	c.samples[sample.Modality] = timedSample{sample: sample, seen: c.now()}
	c.mu.Unlock()
}

// Reset drops all live samples.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.samples = make(map[emotion.Modality]timedSample)
	c.mu.Unlock()
}

// Snapshot returns the unexpired samples in a stable modality order.
func (c *Collector) Snapshot() []emotion.Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLocked()
}

// Aggregate combines the live samples into one VAD triple, label, and
// confidence. With no live samples it reports the neutral default with
// zero modalities, mirroring the aggregator's empty-input behavior.
func (c *Collector) Aggregate() Update {
	samples := c.Snapshot()
	combined, confidence := vad.Aggregate(samples)

	return Update{
		VAD:        combined,
		Emotion:    vad.Classify(combined, vad.ProfileDisplay),
		Confidence: confidence,
		Modalities: len(samples),
	}
}

// Run re-aggregates on every tick and hands the update to fn while at least
// one live sample exists. It stops when ctx is canceled, so a torn-down
// connection cannot keep writing into a disposed session.
func (c *Collector) Run(ctx context.Context, tick time.Duration, fn func(Update)) {
	if tick <= 0 {
		tick = time.Second
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update := c.Aggregate()
			if update.Modalities == 0 {
				continue
			}
			fn(update)
		}
	}
}

func (c *Collector) liveLocked() []emotion.Sample {
	cutoff := c.now().Add(-c.window)

	// Fixed order keeps aggregation deterministic for a given sample set.
	order := []emotion.Modality{emotion.ModalityFacial, emotion.ModalityVoice, emotion.ModalityText}

	live := make([]emotion.Sample, 0, len(c.samples))
	for _, m := range order {
		ts, ok := c.samples[m]
		if !ok {
			continue
		}
		if ts.seen.Before(cutoff) {
			delete(c.samples, m)
			continue
		}
		live = append(live, ts.sample)
	}
	return live
}
