package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/talentprove/assess-backend/internal/middleware"
	"github.com/talentprove/assess-backend/internal/service"
	ws "github.com/talentprove/assess-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// WSHandler streams live timer snapshots to candidates over WebSocket.
type WSHandler struct {
	attemptService *service.AttemptService
	pushInterval   time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, pushInterval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		pushInterval:   pushInterval,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/candidate/submissions/:submission_id/timer
// Pushes a timer snapshot every push interval until the submission
// leaves IN_PROGRESS or the client disconnects.
func (h *WSHandler) TimerStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	candidateID := claims.UserID

	// Reject before upgrading if the attempt is already over.
	if err := h.attemptService.CheckActive(c.Request.Context(), submissionID, candidateID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "submission is not in progress"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("candidate_id", candidateID).
		Str("submission_id", submissionID.String()).
		Logger()
	wsLog.Info().Msg("timer stream opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Read pump: ping/refresh requests, and connection liveness.
	refresh := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			var env ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &env); err != nil {
				return
			}
			switch env.Action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				select {
				case refresh <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	// Re-check the submission status against the database periodically
	// instead of on every tick.
	const statusCheckEvery = 30
	ticksSinceCheck := 0

	push := func() bool {
		snap, err := h.attemptService.GetTimer(ctx, submissionID, candidateID)
		if err != nil {
			wsLog.Warn().Err(err).Msg("timer snapshot failed, closing stream")
			ws.WriteError(conn, "timer unavailable")
			return false
		}
		if err := ws.WriteTyped(conn, ws.TimerEvent{Event: ws.EventTimer, Snapshot: snap}); err != nil {
			return false
		}
		return true
	}

	if !push() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			wsLog.Info().Msg("timer stream closed by client")
			return
		case <-refresh:
			if !push() {
				return
			}
		case <-ticker.C:
			ticksSinceCheck++
			if ticksSinceCheck >= statusCheckEvery {
				ticksSinceCheck = 0
				if err := h.attemptService.CheckActive(ctx, submissionID, candidateID); err != nil {
					ws.WriteTyped(conn, ws.ClosedEvent{Event: ws.EventClosed, Reason: "submission finished"})
					wsLog.Info().Msg("timer stream closed, submission finished")
					return
				}
			}
			if !push() {
				return
			}
		}
	}
}
