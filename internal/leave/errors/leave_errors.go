package leaveerrors

import (
	"fmt"
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"Start date cannot be after end date",
		http.StatusBadRequest,
	)
	ErrLeaveBeforeJoining = apperror.New(
		apperror.CodeInvalidInput,
		"Cannot apply for leave before joining date",
		http.StatusBadRequest,
	)
	ErrZeroDurationLeave = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave duration",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"Leave request overlaps with existing leave",
		http.StatusConflict,
	)
	ErrBalanceRecordMissing = apperror.New(
		apperror.CodeNotFound,
		"Leave balance not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrLeaveAlreadyProcessed = apperror.New(
		apperror.CodeInvalidState,
		"Leave request already processed",
		http.StatusConflict,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"Action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidResolverID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid resolver id",
		http.StatusBadRequest,
	)
	ErrApplyForOthers = apperror.New(
		apperror.CodeForbidden,
		"Employees can only apply leave for themselves",
		http.StatusForbidden,
	)
)

// InsufficientBalanceError carries how many days of LeaveType are still available.
type InsufficientBalanceError struct {
	LeaveType string
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient %s leave balance. Available: %d days", e.LeaveType, e.Available)
}

func (e *InsufficientBalanceError) Details() any {
	return map[string]any{
		"leave_type": e.LeaveType,
		"available":  e.Available,
	}
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// As exposes the error as an AppError whose message names the available days.
func (e *InsufficientBalanceError) As(target any) bool {
	t, ok := target.(**apperror.AppError)
	if !ok {
		return false
	}
	*t = apperror.New(ErrInsufficientBalance.Code, e.Error(), ErrInsufficientBalance.HTTPStatus)
	return true
}
