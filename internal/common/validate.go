package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks request payloads that failed decoding or validation.
var ErrValidation = errors.New("validation failed")

var (
	chileanMobile = regexp.MustCompile(`^(\+?56)?9\d{8}$`)
	validate      = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("clphone", func(fl validator.FieldLevel) bool {
		return ValidChileanPhone(fl.Field().String())
	})
	return v
}

// ValidChileanPhone accepts Chilean mobile numbers with or without the +56 prefix.
// Spaces are ignored.
func ValidChileanPhone(raw string) bool {
	return chileanMobile.MatchString(strings.ReplaceAll(raw, " ", ""))
}

// DecodeJSON decodes the request body into dest, rejecting unknown fields, and runs
// struct validation. Failures are returned as a 400 AppError with per-field details.
func DecodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		appErr := NewAppError("INVALID_BODY", "invalid request body", http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidation, err))
		appErr.Details = map[string]any{"error": err.Error()}
		return appErr
	}
	return Validate(dest)
}

// Validate runs struct validation on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) *AppError {
	appErr := NewAppError("VALIDATION", "validation failed", http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidation, err))
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		appErr.Details = details
	}
	return appErr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "clphone":
		return "must be a Chilean mobile number"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}
