package markers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
)

// MigrateWordTriggers upgrades a slide's legacy word triggers to global
// markers. Each word trigger without a marker_id gets a fresh marker created
// from its stored character range in the base language, the trigger is
// stamped with the marker id, tokens are inserted into the base-language
// script, and every other language's script is flagged for retranslation so
// the tokens travel into translated text. Running it again on a migrated
// slide is a no-op.
func (s *markerService) MigrateWordTriggers(ctx context.Context, slideID uuid.UUID, baseLang string) (*MigrationResult, error) {
	slide, err := s.slideRepo.FindByID(ctx, slideID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load slide", err)
	}
	if slide == nil {
		return nil, apperrors.ErrSlideNotFound(slideID.String())
	}

	result := &MigrationResult{NeedsRetranslate: []string{}}

	layers := slide.Layers
	for li := range layers {
		for _, trigger := range []*entities.Trigger{layers[li].Entrance, layers[li].Exit} {
			if trigger == nil || trigger.Type != entities.TriggerTypeWord || trigger.MarkerID != "" {
				continue
			}
			if trigger.CharStart == nil || trigger.CharEnd == nil {
				s.logger.Warn("marker.migrate_skip_trigger",
					zap.String("slide_id", slideID.String()),
					zap.String("layer_id", layers[li].ID),
					zap.String("reason", "word trigger without char range"),
				)
				continue
			}

			marker, _, err := s.CreateFromWord(ctx, CreateFromWordInput{
				SlideID:   slideID,
				Lang:      baseLang,
				CharStart: *trigger.CharStart,
				CharEnd:   *trigger.CharEnd,
				WordText:  trigger.WordText,
				Name:      "Migrated: " + trigger.WordText,
			})
			if err != nil {
				// A stale trigger should not sink the whole migration.
				s.logger.Warn("marker.migrate_skip_trigger",
					zap.String("slide_id", slideID.String()),
					zap.String("layer_id", layers[li].ID),
					zap.Error(err),
				)
				continue
			}

			trigger.MarkerID = marker.ID.String()
			result.MarkersCreated++
			result.TriggersMigrated++
		}
	}

	if result.TriggersMigrated > 0 {
		if err := s.slideRepo.UpdateLayers(ctx, slideID, layers); err != nil {
			return nil, apperrors.ErrDBQueryFailed("update slide layers", err)
		}
	}

	inserted, _, err := s.InsertTokens(ctx, slideID, baseLang)
	if err != nil {
		return nil, err
	}
	result.TokensInserted = inserted

	if result.TriggersMigrated > 0 {
		langs, err := s.scriptRepo.ListScriptLangs(ctx, slideID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed("list script langs", err)
		}
		for _, lang := range langs {
			if lang == baseLang {
				continue
			}
			if err := s.scriptRepo.SetNeedsRetranslate(ctx, slideID, lang, true); err != nil {
				return nil, apperrors.ErrDBQueryFailed("flag retranslate", err)
			}
			result.NeedsRetranslate = append(result.NeedsRetranslate, lang)
		}
	}

	s.logger.Info("marker.migration_complete",
		zap.String("slide_id", slideID.String()),
		zap.String("base_lang", baseLang),
		zap.Int("markers_created", result.MarkersCreated),
		zap.Int("tokens_inserted", result.TokensInserted),
		zap.Strings("needs_retranslate", result.NeedsRetranslate),
	)

	return result, nil
}
