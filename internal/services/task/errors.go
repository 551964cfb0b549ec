package task

import "errors"

// Task-related errors
var (
	ErrEmptyTitle        = errors.New("task title cannot be empty")
	ErrEmptyAssignee     = errors.New("task must be assigned to a user")
	ErrInvalidTaskID     = errors.New("invalid task ID")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDueBeforeAssigned = errors.New("due date cannot be before the assigned date")
	ErrUnknownAssignee   = errors.New("assignee does not exist")
)
