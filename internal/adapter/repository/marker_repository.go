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

// markerRepository implements the MarkerRepository interface
type markerRepository struct {
	db *gorm.DB
}

// NewMarkerRepository creates a new marker repository
func NewMarkerRepository(db *gorm.DB) repositories.MarkerRepository {
	return &markerRepository{db: db}
}

// CreateMarker creates a new global marker
func (r *markerRepository) CreateMarker(ctx context.Context, marker *entities.GlobalMarker) error {
	if marker == nil {
		return errors.New("marker cannot be nil")
	}
	return r.db.WithContext(ctx).Create(marker).Error
}

// FindMarkerByID retrieves a marker by its ID
func (r *markerRepository) FindMarkerByID(ctx context.Context, id uuid.UUID) (*entities.GlobalMarker, error) {
	var marker entities.GlobalMarker
	err := r.db.WithContext(ctx).
		Preload("Positions").
		Where("id = ?", id).
		First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &marker, nil
}

// ListMarkersBySlide retrieves a slide's markers with their positions,
// oldest first so listing order is stable.
func (r *markerRepository) ListMarkersBySlide(ctx context.Context, slideID uuid.UUID) ([]entities.GlobalMarker, error) {
	var markers []entities.GlobalMarker
	err := r.db.WithContext(ctx).
		Preload("Positions").
		Where("slide_id = ?", slideID).
		Order("created_at ASC").
		Find(&markers).Error
	if err != nil {
		return nil, err
	}
	return markers, nil
}

// UpsertPosition creates or overwrites the position for (marker, lang).
// Last write wins; there is no optimistic concurrency check at this layer.
func (r *markerRepository) UpsertPosition(ctx context.Context, position *entities.MarkerPosition) error {
	if position == nil {
		return errors.New("position cannot be nil")
	}

	existing, err := r.FindPosition(ctx, position.MarkerID, position.Lang)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(position).Error
	}

	position.ID = existing.ID
	position.CreatedAt = existing.CreatedAt
	position.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(position).Error
}

// FindPosition retrieves the position for (marker, lang)
func (r *markerRepository) FindPosition(ctx context.Context, markerID uuid.UUID, lang string) (*entities.MarkerPosition, error) {
	var position entities.MarkerPosition
	err := r.db.WithContext(ctx).
		Where("marker_id = ? AND lang = ?", markerID, lang).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// ListPositionsByLang retrieves every position for a slide's markers in one language
func (r *markerRepository) ListPositionsByLang(ctx context.Context, slideID uuid.UUID, lang string) ([]entities.MarkerPosition, error) {
	var positions []entities.MarkerPosition
	err := r.db.WithContext(ctx).
		Joins("JOIN global_markers ON global_markers.id = marker_positions.marker_id").
		Where("global_markers.slide_id = ? AND marker_positions.lang = ?", slideID, lang).
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// ListLegacyMarkers retrieves the pre-global marker records for a slide and language
func (r *markerRepository) ListLegacyMarkers(ctx context.Context, slideID uuid.UUID, lang string) ([]entities.LegacyMarker, error) {
	var markers []entities.LegacyMarker
	err := r.db.WithContext(ctx).
		Where("slide_id = ? AND lang = ?", slideID, lang).
		Find(&markers).Error
	if err != nil {
		return nil, err
	}
	return markers, nil
}
