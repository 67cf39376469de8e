package report

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/model/chat"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler generates a downloadable report document for the active session.
// Clients treat the document as opaque; its shape may evolve independently
// of the REST payloads.
type Handler struct {
	sessions *sessionService.Store
	advisors advisor.Store
}

// New creates the report handler.
func New(sessions *sessionService.Store, advisors advisor.Store) *Handler {
	return &Handler{sessions: sessions, advisors: advisors}
}

// RegisterRoutes registers the report route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/report", h.handleReport)
}

// Document is the generated report payload.
type Document struct {
	GeneratedAt     time.Time             `json:"generatedAt"`
	SessionID       string                `json:"sessionId"`
	StartTime       time.Time             `json:"startTime"`
	EndTime         *time.Time            `json:"endTime,omitempty"`
	DurationSeconds float64               `json:"durationSeconds"`
	Trend           sessionService.Trend  `json:"trend"`
	AverageValence  float64               `json:"averageValence"`
	RecordCount     int                   `json:"recordCount"`
	MessageCount    int                   `json:"messageCount"`
	Distribution    map[emotion.Label]int `json:"distribution"`
	DominantEmotion emotion.Label         `json:"dominantEmotion"`
	Advice          string                `json:"advice,omitempty"`
	Records         []emotion.Record      `json:"records"`
	Messages        []chat.Message        `json:"messages"`
}

func (h *Handler) handleReport(w http.ResponseWriter, _ *http.Request) {
	sess, ok := h.sessions.Active()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no active session")
		return
	}

	doc := h.build(sess)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "session-"+sess.ID+"-report.json"))
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Printf("[report] failed to encode document: %v", err)
	}
}

func (h *Handler) build(sess chat.Session) Document {
	doc := Document{
		GeneratedAt:    time.Now().UTC(),
		SessionID:      sess.ID,
		StartTime:      sess.StartTime,
		EndTime:        sess.EndTime,
		Trend:          h.sessions.Trend(),
		AverageValence: h.sessions.AverageValence(),
		RecordCount:    len(sess.EmotionHistory),
		MessageCount:   len(sess.ChatHistory),
		Distribution:   make(map[emotion.Label]int),
		Records:        sess.EmotionHistory,
		Messages:       sess.ChatHistory,
	}

	if d, ok := h.sessions.Duration(); ok {
		doc.DurationSeconds = d.Seconds()
	}

	dominant := emotion.Neutral
	best := 0
	for _, rec := range sess.EmotionHistory {
		doc.Distribution[rec.Emotion]++
		if doc.Distribution[rec.Emotion] > best {
			best = doc.Distribution[rec.Emotion]
			dominant = rec.Emotion
		}
	}
	doc.DominantEmotion = dominant

	if profile, ok := h.advisors.FindByID(sess.AdvisorID); ok {
		doc.Advice = profile.AdviceFor(dominant)
	}

	return doc
}
