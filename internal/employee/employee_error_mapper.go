package employee

import (
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/dberror"
)

const uniqueEmail = "uq_employees_email"

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case dberror.IsNotFound(err):
		return employeeerrors.ErrEmployeeNotFound
	case dberror.IsUniqueViolation(err, uniqueEmail):
		return employeeerrors.ErrEmployeeAlreadyExists
	default:
		return err
	}
}
