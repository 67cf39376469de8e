package analyze

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liuwenjie/emomirror/backend/internal/analysis/signal"
	textanalysis "github.com/liuwenjie/emomirror/backend/internal/analysis/text"
	"github.com/liuwenjie/emomirror/backend/internal/analysis/vad"
	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	"github.com/liuwenjie/emomirror/backend/internal/service/preference"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Uploaded captures are capped; anything larger is a client error.
const maxCaptureBytes = 10 << 20

// Handler runs per-modality analysis and records the results on the
// active session.
type Handler struct {
	sessions *sessionService.Store
	prefs    *preference.Store
	advisors advisor.Store
}

// New creates the analyze handler.
func New(sessions *sessionService.Store, prefs *preference.Store, advisors advisor.Store) *Handler {
	return &Handler{sessions: sessions, prefs: prefs, advisors: advisors}
}

// RegisterRoutes registers the analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze/text", h.handleText)
	r.Post("/analyze/voice", h.handleVoice)
	r.Post("/analyze/facial", h.handleFacial)
	r.Post("/analyze/multimodal", h.handleMultimodal)
}

// Result is the response for every analysis endpoint: the stored record
// plus the advice text matching its emotion.
type Result struct {
	Record emotion.Record `json:"record"`
	Advice string         `json:"advice,omitempty"`
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	sample := textanalysis.Analyze(payload.Text)
	h.record(w, r, []emotion.Sample{sample}, emotion.MediaText)
}

func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	data, err := readCapture(w, r)
	if err != nil {
		return
	}

	sample := signal.AnalyzeVoice(data)
	h.record(w, r, []emotion.Sample{sample}, emotion.MediaAudio)
}

func (h *Handler) handleFacial(w http.ResponseWriter, r *http.Request) {
	data, err := readCapture(w, r)
	if err != nil {
		return
	}

	sample := signal.AnalyzeFacial(data)
	h.record(w, r, []emotion.Sample{sample}, emotion.MediaImage)
}

func (h *Handler) handleMultimodal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Samples []emotion.Sample `json:"samples"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Samples) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "at least one sample is required")
		return
	}

	// The HTTP edge is the producer boundary for external samples: clamp
	// here so the aggregator can keep trusting its input. One live sample
	// per modality; a later entry replaces an earlier one.
	byModality := make(map[emotion.Modality]emotion.Sample, len(payload.Samples))
	for _, s := range payload.Samples {
		if vad.Weight(s.Modality) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "unknown modality: "+string(s.Modality))
			return
		}
		s.VAD = s.VAD.Clamp()
		s.Confidence = clamp01(s.Confidence)
		byModality[s.Modality] = s
	}

	samples := make([]emotion.Sample, 0, len(byModality))
	for _, m := range []emotion.Modality{emotion.ModalityFacial, emotion.ModalityVoice, emotion.ModalityText} {
		if s, ok := byModality[m]; ok {
			samples = append(samples, s)
		}
	}

	h.record(w, r, samples, emotion.MediaMultimodal)
}

// record aggregates the samples, classifies the result, appends it to the
// active session, and updates the ambient emotion preference.
func (h *Handler) record(w http.ResponseWriter, r *http.Request, samples []emotion.Sample, media emotion.MediaType) {
	combined, confidence := vad.Aggregate(samples)
	label := vad.Classify(combined, vad.ProfileDisplay)

	rec, err := h.sessions.AddEmotionAnalysis(r.Context(), emotion.Record{
		VAD:        combined,
		Emotion:    label,
		Confidence: confidence,
		MediaType:  media,
	})
	if errors.Is(err, sessionService.ErrNoActiveSession) {
		utils.RespondError(w, http.StatusConflict, "no active session; start one first")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.prefs.SetCurrentEmotion(r.Context(), label)

	utils.RespondJSON(w, http.StatusCreated, Result{
		Record: rec,
		Advice: h.advice(combined),
	})
}

// advice resolves guidance text through the session's advisor using the
// advice classifier profile.
func (h *Handler) advice(combined emotion.VAD) string {
	sess, ok := h.sessions.Active()
	if !ok {
		return ""
	}
	profile, ok := h.advisors.FindByID(sess.AdvisorID)
	if !ok {
		return ""
	}
	return profile.AdviceFor(vad.Classify(combined, vad.ProfileAdvice))
}

func readCapture(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCaptureBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read capture body")
		return nil, err
	}
	if len(data) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "capture body is empty")
		return nil, errors.New("empty body")
	}
	return data, nil
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
