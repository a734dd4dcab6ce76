package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var fieldCaser = cases.Title(language.English)

// FieldError is one failed binding rule, keyed by the json field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every failed field. Its AppError carries the first
// failure as the response message.
type ValidationError struct {
	appErr *AppError
	Fields []FieldError
}

func (e *ValidationError) Error() string { return e.appErr.Error() }
func (e *ValidationError) Unwrap() error { return e.appErr }

func (e *ValidationError) Details() any {
	if len(e.Fields) == 0 {
		return nil
	}
	return map[string]any{"fields": e.Fields}
}

// formatFieldName turns "joining_date" into "Joining Date".
func formatFieldName(s string) string {
	return fieldCaser.String(strings.ReplaceAll(s, "_", " "))
}

func fieldMessage(fe validator.FieldError) string {
	name := formatFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return name + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return name + " must be a date in YYYY-MM-DD format"
	case "uuid", "uuid4":
		return name + " must be a valid id"
	default:
		return name + " is invalid"
	}
}

// MapValidationError converts a binding failure into a field-level error.
// Malformed bodies that never reached the validator map to a generic message.
func MapValidationError(err error) *ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		appErr := New(CodeValidation, "Invalid input", http.StatusBadRequest)
		appErr.Err = err
		return &ValidationError{appErr: appErr}
	}

	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}

	return &ValidationError{
		appErr: Wrap(err, CodeValidation, fields[0].Message, http.StatusBadRequest),
		Fields: fields,
	}
}
