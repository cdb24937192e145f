package gamebackend

import "github.com/go-playground/validator/v10"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("rarity", func(fl validator.FieldLevel) bool {
		return Rarity(fl.Field().String()).IsValid()
	})
	return v
}

// ValidateStruct checks the validate tags of a request payload before
// it goes on the wire.
func ValidateStruct(payload interface{}) error {
	return validate.Struct(payload)
}
