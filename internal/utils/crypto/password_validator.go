package crypto

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit; longer passwords are rejected, not truncated.
	MaxPasswordBytes = 72
)

// ErrPasswordLength describes the "password" validation rule.
var ErrPasswordLength = errors.New("password must be between 6 and 72 bytes long")

// IsAcceptable checks a password against the length policy.
func IsAcceptable(password string) bool {
	return len([]rune(password)) >= MinPasswordLength && len(password) <= MaxPasswordBytes
}

// passwordRule validates password length for the validator package
func passwordRule(fl validator.FieldLevel) bool {
	return IsAcceptable(fl.Field().String())
}

// RegisterPasswordValidator registers the "password" validation tag with the validator.
// Registering twice on the same validator is not an error.
func RegisterPasswordValidator(v *validator.Validate) error {
	err := v.RegisterValidation("password", passwordRule)
	if err != nil && err.Error() == "validator: tag 'password' already exists" {
		return nil
	}
	return err
}
