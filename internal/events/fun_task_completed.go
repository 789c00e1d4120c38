package events

import "time"

const (
	FunTaskLifecycleTopic = "hr.funtask.lifecycle.v1"

	FunTaskCompletedType = "fun_task.completed"
)

// FunTaskCompletedEvent is emitted once per task, on the transition into
// completed. Consumers dedupe on EventID.
type FunTaskCompletedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	FunTaskID    string    `json:"fun_task_id"`
	AssignedToID string    `json:"assigned_to_id"`
	Points       int       `json:"points"`
	CompletedAt  time.Time `json:"completed_at"`
}
