package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hirelens/assessment-backend/internal/service"
	ws "github.com/hirelens/assessment-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live countdown of an assessment session.
type WSHandler struct {
	svc      *service.AssessmentService
	log      zerolog.Logger
	upgrader websocket.Upgrader

	// tickInterval is the push cadence, overridable in tests.
	tickInterval time.Duration
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(svc *service.AssessmentService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		svc:          svc,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
		tickInterval: time.Second,
	}
}

// CountdownStream godoc
// WS /ws/v1/assessments/:id/stream
// Pushes one tick event per second with the remaining time, then a single
// terminal event (expired or submitted) before closing.
func (h *WSHandler) CountdownStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment ID"})
		return
	}

	if _, err := h.svc.State(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("assessment_id", id.String()).Logger()
	wsLog.Info().Msg("Candidate connected")

	// Reads are drained in the background so client pings and close frames
	// are handled while the push loop runs. The reader never writes: gorilla
	// connections allow a single concurrent writer, so pong replies are
	// forwarded to the push loop below, which owns every write on this conn.
	done := make(chan struct{})
	pings := make(chan struct{}, 4)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				wsLog.Debug().Err(err).Msg("Pong push failed")
				return
			}
		case <-ticker.C:
			st, err := h.svc.State(id)
			if err != nil {
				// Session was reset or reaped under us.
				ws.WriteError(conn, "assessment session ended")
				return
			}

			if st.Submitted {
				forced := false
				if rec, ok, err := h.svc.Record(id); err == nil && ok {
					forced = rec.Forced
				}
				event := ws.EventSubmitted
				if forced {
					event = ws.EventExpired
				}
				ws.WriteTyped(conn, ws.TerminalResponse{
					Event:            event,
					Forced:           forced,
					RemainingDisplay: st.RemainingDisplay,
				})
				wsLog.Info().Msg("Stream finished")
				return
			}

			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:            ws.EventTick,
				RemainingSeconds: st.RemainingSeconds,
				RemainingDisplay: st.RemainingDisplay,
				Urgent:           st.Urgent,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Tick push failed")
				return
			}
		}
	}
}
