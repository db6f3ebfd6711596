package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slidevoxdev/slidevox/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	slidesHandler  *Slides
	scriptsHandler *Scripts
	markersHandler *Markers
	sceneHandler   *Scene
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, slidesHandler *Slides, scriptsHandler *Scripts, markersHandler *Markers, sceneHandler *Scene) *Router {
	return &Router{
		cfg:            cfg,
		slidesHandler:  slidesHandler,
		scriptsHandler: scriptsHandler,
		markersHandler: markersHandler,
		sceneHandler:   sceneHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	slides := v1.Group("/slides")
	slides.POST("", rt.slidesHandler.Create)
	slides.GET("/:id", rt.slidesHandler.Get)
	slides.PUT("/:id/layers", rt.slidesHandler.UpdateLayers)
	slides.DELETE("/:id", rt.slidesHandler.Delete)

	slides.PUT("/:id/script", rt.scriptsHandler.Upsert)
	slides.GET("/:id/script", rt.scriptsHandler.Get)
	slides.POST("/:id/synthesize", rt.scriptsHandler.Synthesize)
	slides.POST("/:id/translate", rt.scriptsHandler.Translate)

	slides.POST("/:id/markers/from-word", rt.markersHandler.CreateFromWord)
	slides.GET("/:id/markers", rt.markersHandler.List)
	slides.POST("/:id/markers/propagate", rt.markersHandler.Propagate)
	slides.POST("/:id/markers/recompute-times", rt.markersHandler.RecomputeTimes)
	slides.POST("/:id/markers/insert-tokens", rt.markersHandler.InsertTokens)
	slides.POST("/:id/markers/migrate", rt.markersHandler.Migrate)

	slides.GET("/:id/scene", rt.sceneHandler.GetResolved)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
