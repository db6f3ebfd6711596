package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
)

// scriptRepository implements the ScriptRepository interface
type scriptRepository struct {
	db *gorm.DB
}

// NewScriptRepository creates a new script repository
func NewScriptRepository(db *gorm.DB) repositories.ScriptRepository {
	return &scriptRepository{db: db}
}

// FindScript retrieves the script for (slide, lang)
func (r *scriptRepository) FindScript(ctx context.Context, slideID uuid.UUID, lang string) (*entities.SlideScript, error) {
	var script entities.SlideScript
	err := r.db.WithContext(ctx).
		Where("slide_id = ? AND lang = ?", slideID, lang).
		First(&script).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &script, nil
}

// UpsertScript creates or updates the script row for (slide, lang)
func (r *scriptRepository) UpsertScript(ctx context.Context, script *entities.SlideScript) error {
	if script == nil {
		return errors.New("script cannot be nil")
	}

	existing, err := r.FindScript(ctx, script.SlideID, script.Lang)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(script).Error
	}

	script.ID = existing.ID
	script.CreatedAt = existing.CreatedAt
	script.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(script).Error
}

// ListScriptLangs returns every language that has a script for the slide
func (r *scriptRepository) ListScriptLangs(ctx context.Context, slideID uuid.UUID) ([]string, error) {
	var langs []string
	err := r.db.WithContext(ctx).
		Model(&entities.SlideScript{}).
		Where("slide_id = ?", slideID).
		Order("lang ASC").
		Pluck("lang", &langs).Error
	if err != nil {
		return nil, err
	}
	return langs, nil
}

// SetNeedsRetranslate flips the retranslation flag on a script row
func (r *scriptRepository) SetNeedsRetranslate(ctx context.Context, slideID uuid.UUID, lang string, needs bool) error {
	return r.db.WithContext(ctx).
		Model(&entities.SlideScript{}).
		Where("slide_id = ? AND lang = ?", slideID, lang).
		Updates(map[string]interface{}{
			"needs_retranslate": needs,
			"updated_at":        time.Now(),
		}).Error
}

// FindNormalized retrieves the normalized script for (slide, lang)
func (r *scriptRepository) FindNormalized(ctx context.Context, slideID uuid.UUID, lang string) (*entities.NormalizedScript, error) {
	var script entities.NormalizedScript
	err := r.db.WithContext(ctx).
		Where("slide_id = ? AND lang = ?", slideID, lang).
		First(&script).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &script, nil
}

// UpsertNormalized creates or updates the normalized script row for (slide, lang)
func (r *scriptRepository) UpsertNormalized(ctx context.Context, script *entities.NormalizedScript) error {
	if script == nil {
		return errors.New("normalized script cannot be nil")
	}

	existing, err := r.FindNormalized(ctx, script.SlideID, script.Lang)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(script).Error
	}

	script.ID = existing.ID
	script.CreatedAt = existing.CreatedAt
	script.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(script).Error
}
