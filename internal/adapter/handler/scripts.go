package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/slidevoxdev/slidevox/internal/adapter/dto/script"
	scriptsUsecase "github.com/slidevoxdev/slidevox/internal/usecase/scripts"
	speechUsecase "github.com/slidevoxdev/slidevox/internal/usecase/speech"
)

// Scripts handles script and narration HTTP requests
type Scripts struct {
	scriptService scriptsUsecase.Service
	speechService speechUsecase.Service
	logger        *zap.Logger
}

// NewScriptsHandler creates a new scripts handler
func NewScriptsHandler(scriptService scriptsUsecase.Service, speechService speechUsecase.Service, logger *zap.Logger) *Scripts {
	return &Scripts{
		scriptService: scriptService,
		speechService: speechService,
		logger:        logger,
	}
}

// Upsert handles PUT /v1/slides/:id/script
func (h *Scripts) Upsert(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req script.UpsertRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	stored, err := h.scriptService.Upsert(c.Request().Context(), slideID, req.Lang, req.Text)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, stored)
}

// Get handles GET /v1/slides/:id/script?lang=xx
func (h *Scripts) Get(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	lang := c.QueryParam("lang")
	if lang == "" {
		lang = "en"
	}

	stored, err := h.scriptService.Get(c.Request().Context(), slideID, lang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, stored)
}

// Synthesize handles POST /v1/slides/:id/synthesize
func (h *Scripts) Synthesize(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req script.SynthesizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	outcome, err := h.speechService.Synthesize(c.Request().Context(), slideID, req.Lang, req.Voice)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, outcome)
}

// Translate handles POST /v1/slides/:id/translate
func (h *Scripts) Translate(c echo.Context) error {
	slideID, err := slideIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req script.TranslateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	outcome, err := h.speechService.Translate(c.Request().Context(), slideID, req.SourceLang, req.TargetLang)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, outcome)
}
