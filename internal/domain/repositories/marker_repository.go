package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
)

// MarkerRepository defines the interface for global marker data access
type MarkerRepository interface {
	// CreateMarker creates a new global marker
	CreateMarker(ctx context.Context, marker *entities.GlobalMarker) error

	// FindMarkerByID retrieves a marker by its ID (nil when absent)
	FindMarkerByID(ctx context.Context, id uuid.UUID) (*entities.GlobalMarker, error)

	// ListMarkersBySlide retrieves a slide's markers with their positions
	ListMarkersBySlide(ctx context.Context, slideID uuid.UUID) ([]entities.GlobalMarker, error)

	// UpsertPosition creates or overwrites the position for (marker, lang)
	UpsertPosition(ctx context.Context, position *entities.MarkerPosition) error

	// FindPosition retrieves the position for (marker, lang), nil when absent
	FindPosition(ctx context.Context, markerID uuid.UUID, lang string) (*entities.MarkerPosition, error)

	// ListPositionsByLang retrieves every position for a slide's markers in one language
	ListPositionsByLang(ctx context.Context, slideID uuid.UUID, lang string) ([]entities.MarkerPosition, error)

	// ListLegacyMarkers retrieves the pre-global marker records for a slide and language
	ListLegacyMarkers(ctx context.Context, slideID uuid.UUID, lang string) ([]entities.LegacyMarker, error)
}
