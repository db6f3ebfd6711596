package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
)

// ScriptRepository defines the interface for script data access
type ScriptRepository interface {
	// FindScript retrieves the script for (slide, lang), nil when absent
	FindScript(ctx context.Context, slideID uuid.UUID, lang string) (*entities.SlideScript, error)

	// UpsertScript creates or updates the script row for (slide, lang)
	UpsertScript(ctx context.Context, script *entities.SlideScript) error

	// ListScriptLangs returns every language that has a script for the slide
	ListScriptLangs(ctx context.Context, slideID uuid.UUID) ([]string, error)

	// SetNeedsRetranslate flips the retranslation flag on a script row
	SetNeedsRetranslate(ctx context.Context, slideID uuid.UUID, lang string, needs bool) error

	// FindNormalized retrieves the normalized script for (slide, lang), nil when absent
	FindNormalized(ctx context.Context, slideID uuid.UUID, lang string) (*entities.NormalizedScript, error)

	// UpsertNormalized creates or updates the normalized script row for (slide, lang)
	UpsertNormalized(ctx context.Context, script *entities.NormalizedScript) error
}
