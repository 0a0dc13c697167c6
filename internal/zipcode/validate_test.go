package zipcode

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	v := NewValidator()

	type req struct {
		Zip string `validate:"required,zipcode"`
	}
	assert.NoError(t, v.Struct(req{Zip: "75201"}))
	assert.NoError(t, v.Struct(req{Zip: "75201-1234"}))
	assert.Error(t, v.Struct(req{Zip: "7520"}))
	assert.Error(t, v.Struct(req{Zip: ""}))

	v2 := validator.New()
	require.NoError(t, RegisterValidation(v2))
	assert.Error(t, v2.Struct(req{Zip: "1234"}))
}
