package employee

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindActiveByEmail(ctx context.Context, email string) (*Employee, error)
	FindAllActive(ctx context.Context) ([]Employee, error)
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

func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx == nil {
		return r.db.WithContext(ctx)
	}
	g := r.db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true, Context: ctx})
	g.Statement.ConnPool = r.tx
	return g
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindActiveByEmail(ctx context.Context, email string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Where("is_active = ?", true).
		First(&empl).Error
	return &empl, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&empls).Error
	return empls, err
}
