package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

type detailer interface {
	Details() any
}

// ToHTTP resolves err to its transport shape. Errors that are not AppErrors are
// reported as a generic internal error so infrastructure details never leak.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternalError,
			Message: ErrInternal.Message,
		}
	}

	httpErr := HTTPError{
		Status:  appErr.HTTPStatus,
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	var d detailer
	if errors.As(err, &d) {
		httpErr.Details = d.Details()
	}
	return httpErr
}
