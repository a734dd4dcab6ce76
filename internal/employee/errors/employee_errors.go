package employeeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with this email already exists",
		http.StatusConflict,
	)
	ErrInvalidJoiningDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid joining_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrJoiningDateInFuture = apperror.New(
		apperror.CodeInvalidInput,
		"Joining date cannot be in the future",
		http.StatusBadRequest,
	)
	ErrHROnly = apperror.New(
		apperror.CodeForbidden,
		"Only HR can create employees",
		http.StatusForbidden,
	)
)
