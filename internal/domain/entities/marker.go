package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/slidevoxdev/slidevox/pkg/markertoken"
)

// PositionSource records how a marker position came to exist.
type PositionSource string

const (
	PositionSourceManual    PositionSource = "manual"
	PositionSourceWordClick PositionSource = "word_click"
	PositionSourceAutomatic PositionSource = "automatic"
)

// GlobalMarker is a language-independent identity for one animation-trigger
// concept on a slide. The ID is the value embedded in marker tokens, so the
// marker is never re-created for the same concept — that would break
// cross-language stability.
type GlobalMarker struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SlideID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"slide_id"`
	Name      string           `gorm:"type:varchar(255)" json:"name,omitempty"`
	Positions []MarkerPosition `gorm:"foreignKey:MarkerID;constraint:OnDelete:CASCADE" json:"positions,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GlobalMarker) TableName() string {
	return "global_markers"
}

// NewGlobalMarker creates a new global marker for a slide
func NewGlobalMarker(slideID uuid.UUID, name string) *GlobalMarker {
	return &GlobalMarker{
		ID:        uuid.New(),
		SlideID:   slideID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Token renders the inline token carrying this marker's identity.
func (m *GlobalMarker) Token() string {
	return markertoken.Format(m.ID.String())
}

// MarkerPosition is the per-language placement and timing of a global marker.
// At most one position exists per (marker, lang). CharStart/CharEnd may be
// unknown when the position was derived purely from token anchoring, and
// TimeSeconds stays nil until word timings exist for the language.
type MarkerPosition struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	MarkerID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_marker_positions_marker_lang" json:"marker_id"`
	Lang        string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_marker_positions_marker_lang" json:"lang"`
	CharStart   *int           `json:"char_start,omitempty"`
	CharEnd     *int           `json:"char_end,omitempty"`
	WordText    string         `gorm:"type:varchar(255)" json:"word_text,omitempty"`
	TimeSeconds *float64       `json:"time_seconds,omitempty"`
	Source      PositionSource `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MarkerPosition) TableName() string {
	return "marker_positions"
}

// NewMarkerPosition creates a position for a marker in one language
func NewMarkerPosition(markerID uuid.UUID, lang string, source PositionSource) *MarkerPosition {
	return &MarkerPosition{
		ID:        uuid.New(),
		MarkerID:  markerID,
		Lang:      lang,
		Source:    source,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// LegacyMarker is the pre-global marker scheme: a per-slide, per-language
// record with a directly authored time. Kept only so old scenes keep
// resolving; global marker positions take precedence over these.
type LegacyMarker struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SlideID     uuid.UUID `gorm:"type:uuid;not null;index" json:"slide_id"`
	MarkerKey   string    `gorm:"type:varchar(64);not null" json:"marker_key"`
	Lang        string    `gorm:"type:varchar(20);not null" json:"lang"`
	TimeSeconds float64   `json:"time_seconds"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (LegacyMarker) TableName() string {
	return "legacy_markers"
}
