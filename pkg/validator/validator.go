// Package validator adapts go-playground/validator to echo's Validator
// interface so request DTOs are checked via their validate tags.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New builds a validator with the default tag-based rules
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate checks a bound request struct against its validate tags
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
