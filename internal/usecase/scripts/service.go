// Package scripts manages per-language script text for slides.
package scripts

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
	"github.com/slidevoxdev/slidevox/pkg/textnorm"
)

// Service defines script management operations
type Service interface {
	Upsert(ctx context.Context, slideID uuid.UUID, lang, text string) (*entities.SlideScript, error)
	Get(ctx context.Context, slideID uuid.UUID, lang string) (*entities.SlideScript, error)
}

type scriptService struct {
	scriptRepo repositories.ScriptRepository
	slideRepo  repositories.SlideRepository
	logger     *zap.Logger
}

// NewService constructs the script management service
func NewService(scriptRepo repositories.ScriptRepository, slideRepo repositories.SlideRepository, logger *zap.Logger) Service {
	return &scriptService{scriptRepo: scriptRepo, slideRepo: slideRepo, logger: logger}
}

// Upsert replaces the script text for (slide, lang) and refreshes the
// normalized row. Word timings are dropped: the text changed, so any audio
// alignment no longer applies until TTS runs again.
func (s *scriptService) Upsert(ctx context.Context, slideID uuid.UUID, lang, text string) (*entities.SlideScript, error) {
	slide, err := s.slideRepo.FindByID(ctx, slideID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load slide", err)
	}
	if slide == nil {
		return nil, apperrors.ErrSlideNotFound(slideID.String())
	}

	script, err := s.scriptRepo.FindScript(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load script", err)
	}
	if script == nil {
		script = entities.NewSlideScript(slideID, lang, text)
	}
	script.Text = text
	if err := s.scriptRepo.UpsertScript(ctx, script); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store script", err)
	}

	normalized := textnorm.Normalize(text)
	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load normalized script", err)
	}
	if norm == nil {
		norm = entities.NewNormalizedScript(slideID, lang)
	}
	norm.RawText = text
	norm.NormalizedText = normalized
	norm.TokenizationVersion = textnorm.TokenizationVersion
	norm.WordTimings = nil
	norm.ContainsMarkerTokens = markertoken.Contains(normalized)
	if err := s.scriptRepo.UpsertNormalized(ctx, norm); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store normalized script", err)
	}

	s.logger.Info("script.upserted",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Int("chars", len([]rune(text))),
	)

	return script, nil
}

// Get retrieves the script for (slide, lang)
func (s *scriptService) Get(ctx context.Context, slideID uuid.UUID, lang string) (*entities.SlideScript, error) {
	script, err := s.scriptRepo.FindScript(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load script", err)
	}
	if script == nil {
		return nil, apperrors.ErrScriptNotFound(slideID.String(), lang)
	}
	return script, nil
}
