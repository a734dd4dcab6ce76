package employee

import (
	"errors"
	"testing"

	employeeerrors "go-leave/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapRepositoryError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, employeeerrors.ErrEmployeeNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, employeeerrors.ErrEmployeeAlreadyExists},
		{"pg unique email", &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"}, employeeerrors.ErrEmployeeAlreadyExists},
		{"driver message", errors.New(`ERROR: duplicate key value violates unique constraint "uq_employees_email"`), employeeerrors.ErrEmployeeAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapRepositoryError(tt.in))
		})
	}

	t.Run("other unique constraint passes through", func(t *testing.T) {
		in := &pgconn.PgError{Code: "23505", ConstraintName: "leave_balances_pkey"}
		assert.Same(t, in, mapRepositoryError(in))
	})
}
