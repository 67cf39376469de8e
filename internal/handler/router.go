package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liuwenjie/emomirror/backend/internal/config"
	"github.com/liuwenjie/emomirror/backend/internal/handler/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/handler/analyze"
	"github.com/liuwenjie/emomirror/backend/internal/handler/chat"
	"github.com/liuwenjie/emomirror/backend/internal/handler/preference"
	"github.com/liuwenjie/emomirror/backend/internal/handler/realtime"
	"github.com/liuwenjie/emomirror/backend/internal/handler/report"
	"github.com/liuwenjie/emomirror/backend/internal/handler/session"
	"github.com/liuwenjie/emomirror/backend/internal/handler/stream"
	middlewarePkg "github.com/liuwenjie/emomirror/backend/internal/middleware"
	advisorModel "github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	aiService "github.com/liuwenjie/emomirror/backend/internal/service/ai"
	preferenceService "github.com/liuwenjie/emomirror/backend/internal/service/preference"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil, in which
// case the stream endpoint falls back to advisor-scripted replies.
func NewRouter(cfg *config.Config, sessions *sessionService.Store, prefs *preferenceService.Store, advisors advisorModel.Store, aiSvc *aiService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessionHandler := session.New(sessions, advisors, cfg.Advisor.DefaultID)
	analyzeHandler := analyze.New(sessions, prefs, advisors)
	chatHandler := chat.New(sessions)
	preferenceHandler := preference.New(prefs)
	advisorHandler := advisor.New(advisors)
	realtimeHandler := realtime.New(sessions, prefs, cfg.Realtime)
	reportHandler := report.New(sessions, advisors)
	streamHandler := stream.New(aiSvc, sessions, advisors)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)
		analyzeHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		preferenceHandler.RegisterRoutes(api)
		advisorHandler.RegisterRoutes(api)
		realtimeHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)

		// Streaming endpoint for advisor responses.
		api.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	return r
}
