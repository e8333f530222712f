package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	app_errors "citizen-impact/client/internal/errors"
)

// This package provides a centralized, singleton-based validation helper
// for request payloads. It is shared by the client commands (so bad input
// is rejected before a network round-trip) and by the dev server boundary.

var (
	validate *validator.Validate
	once     sync.Once
)

// SignUpInput carries the fields of a new account. The password rules
// mirror the production backend: at least 8 characters with an upper-case
// letter, a lower-case letter and a digit.
type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password_strength"`
}

// SignInInput carries the credentials of an existing account.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Registration only fails for nil functions or blank tags.
		_ = validate.RegisterValidation("password_strength", passwordStrength)
	})
	return validate
}

func passwordStrength(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// Struct checks a payload against the rules in its field tags. On failure
// it returns a wrapped app_errors.ErrValidation with a readable message.
func Struct(payload interface{}) error {
	err := getInstance().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: unexpected error during validation: %s", app_errors.ErrValidation, err.Error())
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(messages, "; "))
}
