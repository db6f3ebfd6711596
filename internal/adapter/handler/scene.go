package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	sceneUsecase "github.com/slidevoxdev/slidevox/internal/usecase/scene"
)

// Scene handles resolved-scene HTTP requests
type Scene struct {
	sceneService sceneUsecase.Service
	voiceOffset  float64
	logger       *zap.Logger
}

// NewSceneHandler creates a new scene handler. voiceOffset shifts resolved
// times to compensate for the audio player's lead-in.
func NewSceneHandler(sceneService sceneUsecase.Service, voiceOffset float64, logger *zap.Logger) *Scene {
	return &Scene{
		sceneService: sceneService,
		voiceOffset:  voiceOffset,
		logger:       logger,
	}
}

// GetResolved handles GET /v1/slides/:id/scene?lang=xx
func (h *Scene) GetResolved(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	lang := c.QueryParam("lang")
	if lang == "" {
		lang = "en"
	}

	scene, err := h.sceneService.GetResolvedScene(c.Request().Context(), slideID, lang, h.voiceOffset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, scene)
}
