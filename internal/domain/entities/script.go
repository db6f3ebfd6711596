package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

// SlideScript is the author-facing script text for one (slide, language).
// NeedsRetranslate is set when the base-language text gained marker tokens
// after this translation was produced.
type SlideScript struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SlideID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slide_scripts_slide_lang" json:"slide_id"`
	Lang             string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_slide_scripts_slide_lang" json:"lang"`
	Text             string    `gorm:"type:text" json:"text"`
	NeedsRetranslate bool      `gorm:"default:false" json:"needs_retranslate"`
	AudioURL         string    `gorm:"type:varchar(512)" json:"audio_url,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SlideScript) TableName() string {
	return "slide_scripts"
}

// NewSlideScript creates a script row for a slide in one language
func NewSlideScript(slideID uuid.UUID, lang, text string) *SlideScript {
	return &SlideScript{
		ID:        uuid.New(),
		SlideID:   slideID,
		Lang:      lang,
		Text:      text,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NormalizedScript is the canonicalized form of a script plus its derived
// word timings for one (slide, language). WordTimings are offsets into the
// stored NormalizedText; when the text changes they are stale and must be
// cleared until speech synthesis regenerates them.
type NormalizedScript struct {
	ID                   uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	SlideID              uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_normalized_scripts_slide_lang" json:"slide_id"`
	Lang                 string                  `gorm:"type:varchar(20);not null;uniqueIndex:idx_normalized_scripts_slide_lang" json:"lang"`
	RawText              string                  `gorm:"type:text" json:"raw_text"`
	NormalizedText       string                  `gorm:"type:text" json:"normalized_text"`
	TokenizationVersion  int                     `gorm:"default:1" json:"tokenization_version"`
	WordTimings          []wordtiming.WordTiming `gorm:"type:jsonb;serializer:json" json:"word_timings,omitempty"`
	ContainsMarkerTokens bool                    `gorm:"default:false" json:"contains_marker_tokens"`
	CreatedAt            time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (NormalizedScript) TableName() string {
	return "normalized_scripts"
}

// NewNormalizedScript creates a normalized script row
func NewNormalizedScript(slideID uuid.UUID, lang string) *NormalizedScript {
	return &NormalizedScript{
		ID:        uuid.New(),
		SlideID:   slideID,
		Lang:      lang,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// HasTimings reports whether word timings exist for this script.
func (s *NormalizedScript) HasTimings() bool {
	return s != nil && len(s.WordTimings) > 0
}
