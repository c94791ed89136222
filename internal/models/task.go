package models

import "time"

// Status is a task's workflow state
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Advance returns the next status in the forward direction. Completed tasks
// stay completed; direct edits may still set any status.
func (s Status) Advance() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return s
	}
}

// Priority is a task's priority level
type Priority string

const (
	PriorityNone   Priority = "NONE"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task represents a single task inside a project. Owner and AssignedTo are
// resolved from ids when the task is loaded.
type Task struct {
	ID          string
	ProjectID   string
	Owner       User
	Title       string
	Description string
	StartDate   *time.Time
	Deadline    *time.Time
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Tags        []string
	AssignedTo  []User
}
