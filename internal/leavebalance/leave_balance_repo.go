package leavebalance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_balance_repo.go -destination=mock/leave_balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, balance *LeaveBalance) error
	FindByEmployeeAndYear(ctx context.Context, employeeID uuid.UUID, year int) (*LeaveBalance, error)
	FindByEmployeeAndYearForUpdate(ctx context.Context, employeeID uuid.UUID, year int) (*LeaveBalance, error)
	Update(ctx context.Context, balance *LeaveBalance) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn runs statements on the bound *sql.Tx when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx == nil {
		return r.db.WithContext(ctx)
	}
	g := r.db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true, Context: ctx})
	g.Statement.ConnPool = r.tx
	return g
}

func (r *repository) Create(ctx context.Context, balance *LeaveBalance) error {
	return r.conn(ctx).Create(balance).Error
}

// FindByEmployeeAndYear returns nil, nil when no record exists.
func (r *repository) FindByEmployeeAndYear(ctx context.Context, employeeID uuid.UUID, year int) (*LeaveBalance, error) {
	return r.find(r.conn(ctx), employeeID, year)
}

// FindByEmployeeAndYearForUpdate locks the row until the enclosing transaction ends.
func (r *repository) FindByEmployeeAndYearForUpdate(ctx context.Context, employeeID uuid.UUID, year int) (*LeaveBalance, error) {
	return r.find(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), employeeID, year)
}

func (r *repository) find(db *gorm.DB, employeeID uuid.UUID, year int) (*LeaveBalance, error) {
	var balance LeaveBalance
	err := db.
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) Update(ctx context.Context, balance *LeaveBalance) error {
	return r.conn(ctx).Save(balance).Error
}
