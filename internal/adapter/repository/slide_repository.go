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

// slideRepository implements the SlideRepository interface
type slideRepository struct {
	db *gorm.DB
}

// NewSlideRepository creates a new slide repository
func NewSlideRepository(db *gorm.DB) repositories.SlideRepository {
	return &slideRepository{db: db}
}

// Create creates a new slide
func (r *slideRepository) Create(ctx context.Context, slide *entities.Slide) error {
	if slide == nil {
		return errors.New("slide cannot be nil")
	}
	return r.db.WithContext(ctx).Create(slide).Error
}

// FindByID retrieves a slide by its ID
func (r *slideRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Slide, error) {
	var slide entities.Slide
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&slide).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slide, nil
}

// UpdateLayers persists a slide's scene layers
func (r *slideRepository) UpdateLayers(ctx context.Context, slideID uuid.UUID, layers []entities.Layer) error {
	// Struct-based update so the jsonb serializer applies to Layers.
	return r.db.WithContext(ctx).
		Model(&entities.Slide{}).
		Where("id = ?", slideID).
		Updates(entities.Slide{Layers: layers, UpdatedAt: time.Now()}).Error
}

// Delete removes a slide; markers, positions and scripts cascade in the schema
func (r *slideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Slide{}, "id = ?", id).Error
}
