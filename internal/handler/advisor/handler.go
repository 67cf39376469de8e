package advisor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	advisorModel "github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler serves the advisor profile catalog.
type Handler struct {
	store advisorModel.Store
}

// New creates the advisor handler.
func New(store advisorModel.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the advisor routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/advisors", h.handleList)
	r.Get("/advisors/{advisorID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.store.FindByID(chi.URLParam(r, "advisorID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "advisor not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}
