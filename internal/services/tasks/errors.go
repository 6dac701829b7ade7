package tasks

import "errors"

var (
	// ErrTaskNotFound is returned for a missing task or one owned by another user.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTitle is returned when the title is empty once sanitized.
	ErrInvalidTitle = errors.New("task title is required")

	ErrCreateTask = errors.New("failed to create task")
	ErrUpdateTask = errors.New("failed to update task")
	ErrDeleteTask = errors.New("failed to delete task")
	ErrListTasks  = errors.New("failed to list tasks")
	ErrTaskStats  = errors.New("failed to compute task stats")
)
