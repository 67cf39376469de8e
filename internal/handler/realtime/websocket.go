package realtime

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/liuwenjie/emomirror/backend/internal/analysis/vad"
	"github.com/liuwenjie/emomirror/backend/internal/config"
	"github.com/liuwenjie/emomirror/backend/internal/model/emotion"
	"github.com/liuwenjie/emomirror/backend/internal/service/preference"
	realtimeService "github.com/liuwenjie/emomirror/backend/internal/service/realtime"
	sessionService "github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/pkg/utils"
)

// Handler accepts live modality samples over a websocket and pushes back
// periodically re-aggregated emotion updates.
type Handler struct {
	sessions *sessionService.Store
	prefs    *preference.Store
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
}

// New creates the realtime handler.
func New(sessions *sessionService.Store, prefs *preference.Store, cfg config.RealtimeConfig) *Handler {
	return &Handler{
		sessions: sessions,
		prefs:    prefs,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the realtime websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/realtime/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type       string           `json:"type"`
	Modality   emotion.Modality `json:"modality,omitempty"`
	VAD        emotion.VAD      `json:"vad,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

type outboundUpdate struct {
	Type     string                 `json:"type"`
	Update   realtimeService.Update `json:"update"`
	RecordID string                 `json:"recordId,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Active(); !ok {
		utils.RespondError(w, http.StatusConflict, "no active session; start one first")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[realtime] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Canceling the context stops the aggregation loop, so a closed
	// connection can never write into a torn-down session.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	collector := realtimeService.NewCollector(h.cfg.Window)

	// The aggregation loop is the only writer on the connection.
	go collector.Run(ctx, h.cfg.Tick, func(update realtimeService.Update) {
		rec, recErr := h.sessions.AddEmotionAnalysis(ctx, emotion.Record{
			VAD:        update.VAD,
			Emotion:    update.Emotion,
			Confidence: update.Confidence,
			MediaType:  emotion.MediaRealtime,
		})
		if recErr != nil {
			log.Printf("[realtime] dropping update, session gone: %v", recErr)
			cancel()
			return
		}

		h.prefs.SetCurrentEmotion(ctx, update.Emotion)

		if writeErr := conn.WriteJSON(outboundUpdate{Type: "update", Update: update, RecordID: rec.ID}); writeErr != nil {
			log.Printf("[realtime] write failed, closing: %v", writeErr)
			cancel()
		}
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[realtime] read failed: %v", err)
			}
			return
		}

		switch msg.Type {
		case "sample":
			if vad.Weight(msg.Modality) == 0 {
				log.Printf("[realtime] ignoring sample with unknown modality %q", msg.Modality)
				continue
			}
			// The socket edge is the producer boundary: clamp before the
			// sample enters the shared set.
			collector.Submit(emotion.Sample{
				Modality:   msg.Modality,
				VAD:        msg.VAD.Clamp(),
				Confidence: clamp01(msg.Confidence),
			})
		case "reset":
			collector.Reset()
		default:
			log.Printf("[realtime] ignoring unknown message type %q", msg.Type)
		}
	}
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
