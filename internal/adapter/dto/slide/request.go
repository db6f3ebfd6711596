package slide

import (
	"gorm.io/datatypes"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
)

// CreateRequest represents the request to create a slide
type CreateRequest struct {
	Name   string            `json:"name" validate:"required,min=1,max=255"`
	Layers []entities.Layer  `json:"layers,omitempty"`
	Props  datatypes.JSONMap `json:"props,omitempty"`
}

// UpdateLayersRequest represents the request to replace a slide's scene
type UpdateLayersRequest struct {
	Layers []entities.Layer `json:"layers" validate:"required"`
}
