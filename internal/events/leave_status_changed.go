package events

import "time"

const (
	LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

	LeaveStatusChangedType = "leave.status_changed"
)

type LeaveStatusChangedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	LeaveID      string    `json:"leave_id"`
	EmployeeID   string    `json:"employee_id"`
	ApprovedByID string    `json:"approved_by_id"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	DaysCredited int       `json:"days_credited"`
	OccurredAt   time.Time `json:"occurred_at"`
}
