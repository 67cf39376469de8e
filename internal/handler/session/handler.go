package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
)

// Handler exposes session lifecycle and derived statistics over HTTP.
type Handler struct {
	sessions       *sessionService.Store
	advisors       advisor.Store
	defaultAdvisor string
}

// New creates the session handler.
func New(sessions *sessionService.Store, advisors advisor.Store, defaultAdvisor string) *Handler {
	return &Handler{
		sessions:       sessions,
		advisors:       advisors,
		defaultAdvisor: defaultAdvisor,
	}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleStart)
	r.Get("/session", h.handleGet)
	r.Post("/session/end", h.handleEnd)
	r.Delete("/session", h.handleClear)
	r.Get("/session/history", h.handleHistory)
}

// Stats is the derived, read-only view the frontend renders next to the
// session header.
type Stats struct {
	DurationSeconds *float64             `json:"durationSeconds"`
	Trend           sessionService.Trend `json:"trend"`
	AverageValence  float64              `json:"averageValence"`
	RecordCount     int                  `json:"recordCount"`
	MessageCount    int                  `json:"messageCount"`
	LastError       string               `json:"lastError,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AdvisorID string `json:"advisorId"`
	}

	// An empty body means "use the default advisor".
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	advisorID := payload.AdvisorID
	if advisorID == "" {
		advisorID = h.defaultAdvisor
	}
	if _, ok := h.advisors.FindByID(advisorID); !ok {
		respondError(w, http.StatusBadRequest, "advisor not found")
		return
	}

	sess := h.sessions.Start(r.Context(), advisorID)
	respondJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Active()
	if !ok {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"stats":   h.stats(),
	})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.End(r.Context())
	if !ok {
		// Ending without a session is a guarded no-op.
		respondJSON(w, http.StatusOK, map[string]string{"status": "no active session"})
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleHistory(w http.ResponseWriter, _ *http.Request) {
	sess, ok := h.sessions.Active()
	if !ok {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, sess.EmotionHistory)
}

func (h *Handler) stats() Stats {
	stats := Stats{
		Trend:          h.sessions.Trend(),
		AverageValence: h.sessions.AverageValence(),
		LastError:      h.sessions.LastError(),
	}

	if d, ok := h.sessions.Duration(); ok {
		seconds := d.Seconds()
		stats.DurationSeconds = &seconds
	}

	if sess, ok := h.sessions.Active(); ok {
		stats.RecordCount = len(sess.EmotionHistory)
		stats.MessageCount = len(sess.ChatHistory)
	}

	return stats
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
