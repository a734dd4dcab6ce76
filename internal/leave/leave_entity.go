package leave

import (
	"time"

	"go-leave/internal/employee"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates" json:"employee_id"`

	LeaveType string    `gorm:"type:varchar(20);not null" json:"leave_type"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates" json:"end_date"`
	TotalDays int       `gorm:"not null" json:"total_days"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Comments   string     `gorm:"type:text" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Employee *employee.Employee `gorm:"foreignKey:EmployeeID" json:"-"`
	Resolver *employee.Employee `gorm:"foreignKey:ResolvedBy" json:"-"`
}

// IsResolved reports whether the request has left the pending state.
func (l *Leave) IsResolved() bool {
	return l.Status != StatusPending
}
