package leave

import "go-leave/internal/leavebalance"

type ApplyLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=casual sick"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" binding:"required,min=5,max=500"`
}

type ProcessLeaveRequest struct {
	Action   string `json:"action" binding:"required,oneof=approve reject"`
	Comments string `json:"comments" binding:"max=500"`
}

type LeaveResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	LeaveType    string  `json:"leave_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalDays    int     `json:"total_days"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	ResolvedBy   *string `json:"resolved_by,omitempty"`
	ResolverName string  `json:"resolver_name,omitempty"`
	ResolvedAt   *string `json:"resolved_at,omitempty"`
	Comments     string  `json:"comments,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	leavebalance.Summary
}
