// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All calls to the task functions go through this interface.
// Commands and the synchronizer never import the HTTP client directly.
type Service interface {
	// ListTasks returns every task owned by userID in server order.
	ListTasks(ctx context.Context, userID string) ([]Task, error)

	// CreateTask creates a task. The returned TaskID may be empty when the
	// backend omits it; FileURL is set only when a file was uploaded.
	CreateTask(ctx context.Context, req NewTask) (CreateResult, error)

	// UpdateTaskStatus sets the status of a task.
	UpdateTaskStatus(ctx context.Context, taskID string, status Status) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, taskID string) error
}
