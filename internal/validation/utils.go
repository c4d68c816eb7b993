// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in
// struct tags, accepts hand-written CustomValidationErrors for rules
// tags cannot express, and converts both into field-level errors the
// client can understand.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate returns validator.ValidationErrors (tag rules), CustomValidationErrors
// (hand-written rules), or nil.
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Binding covers path params, query params (GET/DELETE) and the JSON body.
// payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindError converts echo's binding failures into a 400 HTTPError.
func bindError(err error) *errs.HTTPError {
	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		field := strings.ToLower(bindingErr.Field)
		return errs.NewBadRequestError(
			fmt.Sprintf("Invalid value for %s", field),
			true,
			nil,
			[]errs.FieldError{{Field: field, Error: "has an invalid format"}},
			nil,
		)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && echoErr.Code == http.StatusBadRequest {
			return errs.NewBadRequestError(msg, false, nil, nil, nil)
		}
	}

	return errs.NewBadRequestError("Invalid request body", false, nil, nil, nil)
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a field-level failure: surface the message without a field list.
		return "Validation failed: " + err.Error(), []errs.FieldError{}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			case reflect.Slice, reflect.Array, reflect.Map:
				msg = fmt.Sprintf("must contain at least %s item(s)", err.Param())
			default:
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			case reflect.Slice, reflect.Array, reflect.Map:
				msg = fmt.Sprintf("must not contain more than %s item(s)", err.Param())
			default:
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
