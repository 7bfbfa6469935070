package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/handler"
	"github.com/stemsi/marksheet-builder/internal/middleware"
	"github.com/stemsi/marksheet-builder/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Form     *handler.FormHandler
	Template *handler.TemplateHandler
	WS       *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRatePerMinute, time.Minute)

	// ─── 1. Forms ──────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())
	{
		forms := api.Group("/forms")
		forms.POST("", handlers.Form.CreateForm)
		forms.GET("/:id", handlers.Form.GetForm)
		forms.DELETE("/:id", handlers.Form.DeleteForm)
		forms.PATCH("/:id/fields", handlers.Form.SetField)
		forms.POST("/:id/subjects", handlers.Form.AddSubject)
		forms.PATCH("/:id/subjects/:index", handlers.Form.SetSubjectField)
		forms.DELETE("/:id/subjects/:index", handlers.Form.RemoveSubject)
		forms.POST("/:id/submit", submitLimiter.Middleware(), handlers.Form.Submit)

		// ─── 2. Class selector options ─────────────────────────────────
		api.GET("/users/:user_id/templates", handlers.Template.ListTemplates)
	}

	// ─── 3. WebSocket status stream ───────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/forms/:id/status", handlers.WS.FormStatusStream)
	}

	return router
}
