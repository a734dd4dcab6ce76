package leavebalance

import (
	"context"

	"go-leave/internal/shared/dberror"

	"github.com/google/uuid"
)

const uniqueEmployeeYear = "uq_leave_balances_employee_year"

// EnsureForYear creates a full-quota balance for employeeID and year unless one
// already exists. It reports whether a row was inserted.
func EnsureForYear(ctx context.Context, repo Repository, employeeID uuid.UUID, year int) (bool, error) {
	existing, err := repo.FindByEmployeeAndYear(ctx, employeeID, year)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if err := repo.Create(ctx, NewForYear(employeeID, year)); err != nil {
		// A concurrent writer got there first.
		if dberror.IsUniqueViolation(err, uniqueEmployeeYear) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
