package events

import "time"

const (
	EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

	EmployeeRegisteredType = "employee.registered"
)

type EmployeeRegisteredEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
