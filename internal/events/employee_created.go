package events

import "time"

const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const EventEmployeeCreated = "employee_created"

type EmployeeCreatedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	EmployeeID  string    `json:"employee_id"`
	Email       string    `json:"email"`
	Department  string    `json:"department"`
	Role        string    `json:"role"`
	BalanceYear int       `json:"balance_year"`
	OccurredAt  time.Time `json:"occurred_at"`
}
