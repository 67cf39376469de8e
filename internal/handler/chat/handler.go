package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/liuwenjie/emomirror/backend/internal/model/chat"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler persists and serves chat messages for the active session.
type Handler struct {
	sessions *sessionService.Store
}

// New creates the chat handler.
func New(sessions *sessionService.Store) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes registers the chat message routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleSave)
	r.Get("/messages", h.handleList)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Role != chatModel.RoleUser && payload.Role != chatModel.RoleAssistant {
		utils.RespondError(w, http.StatusBadRequest, "role must be user or assistant")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	msg := chatModel.Message{
		Role:    payload.Role,
		Content: payload.Content,
	}

	// User turns carry a reference to the emotion analysis active at send
	// time so the assistant can read the mood back later.
	if payload.Role == chatModel.RoleUser {
		if rec, ok := h.sessions.LatestRecord(); ok {
			msg.EmotionRecordID = rec.ID
		}
	}

	saved, err := h.sessions.AddChatMessage(r.Context(), msg)
	if errors.Is(err, sessionService.ErrNoActiveSession) {
		utils.RespondError(w, http.StatusConflict, "no active session; start one first")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	sess, ok := h.sessions.Active()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no active session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess.ChatHistory)
}
