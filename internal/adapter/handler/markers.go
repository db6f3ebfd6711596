package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/slidevoxdev/slidevox/internal/adapter/dto/marker"
	markersUsecase "github.com/slidevoxdev/slidevox/internal/usecase/markers"
)

// Markers handles global marker HTTP requests
type Markers struct {
	markerService markersUsecase.Service
	logger        *zap.Logger
}

// NewMarkersHandler creates a new markers handler
func NewMarkersHandler(markerService markersUsecase.Service, logger *zap.Logger) *Markers {
	return &Markers{
		markerService: markerService,
		logger:        logger,
	}
}

// CreateFromWord handles POST /v1/slides/:id/markers/from-word
func (h *Markers) CreateFromWord(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req marker.CreateFromWordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	created, token, err := h.markerService.CreateFromWord(c.Request().Context(), markersUsecase.CreateFromWordInput{
		SlideID:   slideID,
		Lang:      req.Lang,
		CharStart: req.CharStart,
		CharEnd:   req.CharEnd,
		WordText:  req.WordText,
		Name:      req.Name,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, marker.CreatedResponse{
		MarkerID: created.ID.String(),
		Name:     created.Name,
		Token:    token,
	})
}

// List handles GET /v1/slides/:id/markers
func (h *Markers) List(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	markers, err := h.markerService.ListForSlide(c.Request().Context(), slideID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, markers)
}

// Propagate handles POST /v1/slides/:id/markers/propagate
func (h *Markers) Propagate(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req marker.PropagateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	count, err := h.markerService.Propagate(c.Request().Context(), slideID, req.SourceLang, req.TargetLang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, marker.CountResponse{Count: count})
}

// RecomputeTimes handles POST /v1/slides/:id/markers/recompute-times
func (h *Markers) RecomputeTimes(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req marker.RecomputeTimesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	count, err := h.markerService.RecomputeTimes(c.Request().Context(), slideID, req.Lang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, marker.CountResponse{Count: count})
}

// InsertTokens handles POST /v1/slides/:id/markers/insert-tokens
func (h *Markers) InsertTokens(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req marker.InsertTokensRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	inserted, text, err := h.markerService.InsertTokens(c.Request().Context(), slideID, req.Lang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, marker.InsertTokensResponse{Inserted: inserted, Text: text})
}

// Migrate handles POST /v1/slides/:id/markers/migrate
func (h *Markers) Migrate(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req marker.MigrateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.markerService.MigrateWordTriggers(c.Request().Context(), slideID, req.BaseLang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}
