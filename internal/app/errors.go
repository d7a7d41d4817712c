package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrAuthRequired means the operation needs an authenticated admin.
	// Scoring writes are always attributed; there is no anonymous path.
	ErrAuthRequired = errors.New("authorization required")
	// ErrInvalidCredentials covers bad email/password and inactive admins,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-level messages for a rejected request.
// Nothing is mutated when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// asValidationError converts validator.v10 output into the field-message
// form; other errors pass through unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		case "gt":
			fields[fe.Field()] = fmt.Sprintf("must be greater than %s", fe.Param())
		case "max":
			fields[fe.Field()] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}
