package leavebalance

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCasual = "casual"
	TypeSick   = "sick"
)

// Annual quotas granted to every employee per calendar year.
const (
	QuotaCasual = 10
	QuotaSick   = 12
)

// LeaveBalance stores remaining days in the *LeaveBalance columns and consumed days
// in the *LeaveUsed columns, so balance + used stays equal to the annual quota.
type LeaveBalance struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_year"`
	Year               int       `gorm:"not null;uniqueIndex:uq_leave_balances_employee_year"`
	CasualLeaveBalance int       `gorm:"not null;default:10"`
	CasualLeaveUsed    int       `gorm:"not null;default:0"`
	SickLeaveBalance   int       `gorm:"not null;default:12"`
	SickLeaveUsed      int       `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// NewForYear returns a full-quota record for employeeID.
func NewForYear(employeeID uuid.UUID, year int) *LeaveBalance {
	return &LeaveBalance{
		ID:                 uuid.New(),
		EmployeeID:         employeeID,
		Year:               year,
		CasualLeaveBalance: QuotaCasual,
		SickLeaveBalance:   QuotaSick,
	}
}

// Remaining reports the unused days for leaveType. Unknown types have none.
func (b *LeaveBalance) Remaining(leaveType string) int {
	switch leaveType {
	case TypeCasual:
		return b.CasualLeaveBalance
	case TypeSick:
		return b.SickLeaveBalance
	default:
		return 0
	}
}

// Debit moves days from the remaining balance of leaveType to its used counter.
func (b *LeaveBalance) Debit(leaveType string, days int) {
	switch leaveType {
	case TypeCasual:
		b.CasualLeaveBalance -= days
		b.CasualLeaveUsed += days
	case TypeSick:
		b.SickLeaveBalance -= days
		b.SickLeaveUsed += days
	}
}

type Allowance struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type Summary struct {
	CasualLeave Allowance `json:"casual_leave"`
	SickLeave   Allowance `json:"sick_leave"`
}

func (b *LeaveBalance) Summary() Summary {
	return Summary{
		CasualLeave: Allowance{
			Total:     b.CasualLeaveBalance + b.CasualLeaveUsed,
			Used:      b.CasualLeaveUsed,
			Remaining: b.CasualLeaveBalance,
		},
		SickLeave: Allowance{
			Total:     b.SickLeaveBalance + b.SickLeaveUsed,
			Used:      b.SickLeaveUsed,
			Remaining: b.SickLeaveBalance,
		},
	}
}
