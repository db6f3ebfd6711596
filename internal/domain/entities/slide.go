package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TriggerType discriminates the animation trigger variants.
type TriggerType string

const (
	// TriggerTypeWord anchors to a word by character offsets, optionally
	// carrying a global marker ID set during migration.
	TriggerTypeWord TriggerType = "word"
	// TriggerTypeMarker anchors purely to a global marker ID.
	TriggerTypeMarker TriggerType = "marker"
	// TriggerTypeTime is the terminal, resolved form: absolute seconds.
	TriggerTypeTime TriggerType = "time"
	// TriggerTypeStart and TriggerTypeEnd anchor to the slide boundaries
	// with an offset.
	TriggerTypeStart TriggerType = "start"
	TriggerTypeEnd   TriggerType = "end"
)

// Resolution provenance recorded on resolved triggers for debuggability.
const (
	ResolutionGlobalMarker    = "global_marker"
	ResolutionWordViaMarker   = "word_via_marker"
	ResolutionWordTimingExact = "word_timing_exact"
)

// Trigger is a tagged variant; only the fields of the active Type are set.
// After resolution a trigger becomes Type "time" with Seconds populated,
// keeping OriginalType and ResolutionMethod for diagnosis.
type Trigger struct {
	Type             TriggerType `json:"type"`
	Seconds          *float64    `json:"seconds,omitempty"`
	OffsetSeconds    *float64    `json:"offsetSeconds,omitempty"`
	CharStart        *int        `json:"charStart,omitempty"`
	CharEnd          *int        `json:"charEnd,omitempty"`
	WordText         string      `json:"wordText,omitempty"`
	MarkerID         string      `json:"markerId,omitempty"`
	OriginalType     TriggerType `json:"_original_type,omitempty"`
	ResolutionMethod string      `json:"_resolution_method,omitempty"`
}

// Layer is one element of a slide's scene: a text or image overlay with
// entrance/exit animation triggers.
type Layer struct {
	ID       string                 `json:"id"`
	Kind     string                 `json:"kind"`
	Name     string                 `json:"name,omitempty"`
	Entrance *Trigger               `json:"entrance,omitempty"`
	Exit     *Trigger               `json:"exit,omitempty"`
	Props    map[string]interface{} `json:"props,omitempty"`
}

// Slide owns a scene (layer list) and, per language, a script. Props holds
// presentation-level settings (background, theme, transition) the renderer
// consumes untyped.
type Slide struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string            `gorm:"type:varchar(255)" json:"name"`
	Position  int               `gorm:"default:0" json:"position"`
	Layers    []Layer           `gorm:"type:jsonb;serializer:json" json:"layers,omitempty"`
	Props     datatypes.JSONMap `gorm:"type:jsonb" json:"props,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Slide) TableName() string {
	return "slides"
}

// NewSlide creates a new slide
func NewSlide(name string) *Slide {
	return &Slide{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CloneLayers deep-copies the scene's layers so resolution can transform
// triggers without touching the persisted scene.
func (s *Slide) CloneLayers() []Layer {
	if s.Layers == nil {
		return nil
	}
	out := make([]Layer, len(s.Layers))
	for i, l := range s.Layers {
		out[i] = l
		if l.Entrance != nil {
			e := *l.Entrance
			out[i].Entrance = &e
		}
		if l.Exit != nil {
			x := *l.Exit
			out[i].Exit = &x
		}
	}
	return out
}
