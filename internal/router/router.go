package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/handler"
	"github.com/hirelens/assessment-backend/internal/middleware"
	"github.com/hirelens/assessment-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Analyze    *handler.AnalyzeHandler
	Assessment *handler.AssessmentHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the analyze route: each hit triggers an upstream
	// generation exchange (10 requests per minute per IP).
	analyzeLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── Assessment API ────────────────────────────────────────────────
	api := router.Group("/api/v1/assessments")
	{
		api.POST("/analyze", analyzeLimiter.Middleware(), handlers.Analyze.AnalyzeApplication)

		api.GET("/:id/state", handlers.Assessment.GetState)
		api.POST("/:id/switch", handlers.Assessment.SwitchQuestion)
		api.PUT("/:id/answer", handlers.Assessment.SaveAnswer)
		api.PUT("/:id/language", handlers.Assessment.ChangeLanguage)
		api.POST("/:id/submit", handlers.Assessment.Submit)
		api.GET("/:id/report", handlers.Assessment.GetReport)
		api.DELETE("/:id", handlers.Assessment.ResetAssessment)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/assessments/:id/stream", handlers.WS.CountdownStream)
	}

	return router
}
