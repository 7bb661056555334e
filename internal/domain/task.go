package domain

import "encoding/json"

// Task types understood by the task dispatcher.
const (
	TaskTypeSQL   = "sql"
	TaskTypeExcel = "excel"
)

// NextAction is a declared follow-up of a task. Next actions are logged,
// never dispatched.
type NextAction struct {
	ActionType   string  `json:"action_type"`
	TargetTaskID string  `json:"target_task_id"`
	Condition    *string `json:"condition,omitempty"`
}

// TaskMetadata describes one task invocation.
type TaskMetadata struct {
	TaskID       string          `json:"task_id"`
	Dependencies []string        `json:"dependencies"`
	NextActions  []NextAction    `json:"next_actions"`
	Config       json.RawMessage `json:"config"`
}

// ExecutionResult is the outcome of a task.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
