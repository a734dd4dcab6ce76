package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	EventLeaveApplied   = "leave_applied"
	EventLeaveProcessed = "leave_processed"
)

type LeaveAppliedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalDays  int       `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LeaveProcessedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	Status     string    `json:"status"`
	ResolvedBy string    `json:"resolved_by"`
	TotalDays  int       `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}
