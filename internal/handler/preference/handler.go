package preference

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	preferenceService "github.com/liuwenjie/emomirror/backend/internal/service/preference"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler exposes the preference store over HTTP.
type Handler struct {
	prefs *preferenceService.Store
}

// New creates the preference handler.
func New(prefs *preferenceService.Store) *Handler {
	return &Handler{prefs: prefs}
}

// RegisterRoutes registers the preference routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences", h.handleGet)
	r.Put("/preferences", h.handlePut)
}

func (h *Handler) handleGet(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.prefs.Snapshot())
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Theme          *preferenceService.Theme `json:"theme"`
		CurrentEmotion *emotion.Label           `json:"currentEmotion"`
		Loading        *bool                    `json:"isLoading"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Theme != nil {
		if err := h.prefs.SetTheme(r.Context(), *payload.Theme); err != nil {
			if errors.Is(err, preferenceService.ErrInvalidTheme) {
				utils.RespondError(w, http.StatusBadRequest, "theme must be light, dark, or auto")
				return
			}
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if payload.CurrentEmotion != nil {
		h.prefs.SetCurrentEmotion(r.Context(), *payload.CurrentEmotion)
	}
	if payload.Loading != nil {
		h.prefs.SetLoading(*payload.Loading)
	}

	utils.RespondJSON(w, http.StatusOK, h.prefs.Snapshot())
}
