package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindAllByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Leave, error)
	Update(ctx context.Context, l *Leave) error
	HasOverlappingPeriod(ctx context.Context, employeeID uuid.UUID, startDate, endDate time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx == nil {
		return r.db.WithContext(ctx)
	}
	g := r.db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true, Context: ctx})
	g.Statement.ConnPool = r.tx
	return g
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Preload("Employee").
		First(&l, "id = ?", id).Error
	return &l, err
}

// FindByIDForUpdate locks the leave row until the enclosing transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Preload("Resolver").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit(clause.Associations).Save(l).Error
}

// HasOverlappingPeriod reports whether a pending or approved leave of employeeID
// intersects the closed range [startDate, endDate].
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID uuid.UUID, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}
