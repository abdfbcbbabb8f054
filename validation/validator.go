// Package validation checks request DTOs with go-playground/validator and converts
// violations into an apperror validation error keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/devactivity/dasar-actix-web/apperror"
)

var usernamePattern = regexp.MustCompile(`^[_0-9a-zA-Z]+$`)

// Validator wraps go-playground/validator with the application's error format.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom tags used by the request DTOs:
//
//	notblank  string is not empty after trimming whitespace
//	username  letters, digits and underscores only
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct. It returns nil, an *apperror.AppError of type
// ValidationError, or the validator's own error for invalid input (e.g. a nil pointer).
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	details := apperror.FieldErrors{}
	for _, e := range validationErrs {
		code, message := describe(e)
		details.Add(e.Field(), code, message)
	}
	return apperror.NewValidationError(details)
}

// describe returns the error code and message for a failed tag.
func describe(e validator.FieldError) (string, string) {
	isList := e.Kind() == reflect.Slice || e.Kind() == reflect.Array
	switch e.Tag() {
	case "required", "notblank":
		return "required", "fails validation - cannot be empty"
	case "email":
		return "email", "must be a valid email address"
	case "username":
		return "regex", "may only contain letters, digits and underscores"
	case "min":
		if isList {
			return "length", fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return "length", fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if isList {
			return "length", fmt.Sprintf("must contain at most %s items", e.Param())
		}
		return "length", fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "range", "must be greater than or equal to " + e.Param()
	case "lte":
		return "range", "must be less than or equal to " + e.Param()
	default:
		return e.Tag(), "is invalid"
	}
}
