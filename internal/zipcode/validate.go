package zipcode

import (
	"github.com/go-playground/validator/v10"
	"github.com/mountly/coverage-backend/internal/httputil"
)

// RegisterValidation adds the "zipcode" tag to v: a 5-digit ZIP or a ZIP+4
// in any punctuation.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		_, ok := Normalize(fl.Field().String())
		return ok
	})
}

// NewValidator is httputil.NewValidator plus the zipcode tag.
func NewValidator() *validator.Validate {
	v := httputil.NewValidator()
	_ = RegisterValidation(v)
	return v
}
