package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
)

// SlideRepository defines the interface for slide data access
type SlideRepository interface {
	// Create creates a new slide
	Create(ctx context.Context, slide *entities.Slide) error

	// FindByID retrieves a slide by its ID (nil when absent)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Slide, error)

	// UpdateLayers persists a slide's scene layers
	UpdateLayers(ctx context.Context, slideID uuid.UUID, layers []entities.Layer) error

	// Delete removes a slide and cascades to its markers and scripts
	Delete(ctx context.Context, id uuid.UUID) error
}
