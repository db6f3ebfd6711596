package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/adapter/dto/slide"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
)

// Slides handles slide HTTP requests
type Slides struct {
	slideRepo repositories.SlideRepository
	logger    *zap.Logger
}

// NewSlidesHandler creates a new slides handler
func NewSlidesHandler(slideRepo repositories.SlideRepository, logger *zap.Logger) *Slides {
	return &Slides{slideRepo: slideRepo, logger: logger}
}

// Create handles POST /v1/slides
func (h *Slides) Create(c echo.Context) error {
	var req slide.CreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	s := entities.NewSlide(req.Name)
	s.Layers = req.Layers
	s.Props = req.Props
	if err := h.slideRepo.Create(c.Request().Context(), s); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("create slide", err))
	}

	return HandleSuccess(h.logger, c, s)
}

// Get handles GET /v1/slides/:id
func (h *Slides) Get(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	s, err := h.slideRepo.FindByID(c.Request().Context(), slideID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("load slide", err))
	}
	if s == nil {
		return HandleError(h.logger, c, apperrors.ErrSlideNotFound(slideID.String()))
	}

	return HandleSuccess(h.logger, c, s)
}

// UpdateLayers handles PUT /v1/slides/:id/layers
func (h *Slides) UpdateLayers(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req slide.UpdateLayersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.slideRepo.UpdateLayers(c.Request().Context(), slideID, req.Layers); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("update slide layers", err))
	}

	return HandleSuccess(h.logger, c, nil)
}

// Delete handles DELETE /v1/slides/:id
func (h *Slides) Delete(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.slideRepo.Delete(c.Request().Context(), slideID); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("delete slide", err))
	}

	return HandleSuccess(h.logger, c, nil)
}
