package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/talentprove/assess-backend/internal/config"
	"github.com/talentprove/assess-backend/internal/handler"
	"github.com/talentprove/assess-backend/internal/middleware"
	"github.com/talentprove/assess-backend/internal/response"
	"github.com/talentprove/assess-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	Review  *handler.ReviewHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for attempt starts, which carry the access code
	// (30 requests per minute per IP).
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Candidate Group (JWT + Session) ────────────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(
		middleware.RequireCandidateJWT(authService),
		middleware.CheckCandidateSession(authService),
	)
	{
		candidateAPI.POST("/assessments/:assessment_id/attempt",
			startLimiter.Middleware(), handlers.Attempt.StartAttempt)

		candidateAPI.POST("/submissions/:submission_id/sections/:section_id/enter", handlers.Attempt.EnterSection)
		candidateAPI.GET("/submissions/:submission_id/timer", handlers.Attempt.GetTimer)
		candidateAPI.PUT("/submissions/:submission_id/sections/:section_id/answer", handlers.Attempt.SaveAnswer)
		candidateAPI.PUT("/submissions/:submission_id/coding-result", handlers.Attempt.SaveCodingResult)
		candidateAPI.POST("/submissions/:submission_id/submit", handlers.Attempt.Submit)
	}

	// ─── 2. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateWSAuth(authService))
	{
		ws.GET("/candidate/submissions/:submission_id/timer", handlers.WS.TimerStream)
	}

	// ─── 3. Organizer Group (JWT) ──────────────────────────────────────
	organizerAPI := router.Group("/api/v1/organizer")
	organizerAPI.Use(middleware.RequireOrganizerJWT(authService))
	{
		organizerAPI.GET("/assessments/:assessment_id/results", handlers.Review.ListResults)
		organizerAPI.GET("/submissions/:submission_id", handlers.Review.GetSubmission)
		organizerAPI.PATCH("/submissions/:submission_id/verdict", handlers.Review.OverrideVerdict)
	}

	return router
}
