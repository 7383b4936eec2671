// Package service defines the backend-agnostic contract for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// Commands never talk HTTP directly; every remote call goes through here.
//
// Every method returns either a value or a *Error. A successful ListTasks
// always returns a non-nil slice, so an empty page is distinguishable from a
// failure.
type Service interface {
	// Register creates a new account. No credential is required.
	Register(ctx context.Context, username, password string) error

	// Login exchanges username and password for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// ListTasks returns one page of tasks in server order.
	// A page past the end yields an empty slice, not an error.
	ListTasks(ctx context.Context, q Query) ([]Task, error)

	// GetTask fetches a single task.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task. Empty titles fail with KindValidation
	// before any network call.
	CreateTask(ctx context.Context, title, description string) (Task, error)

	// UpdateTask replaces title and description of an existing task.
	UpdateTask(ctx context.Context, id int64, title, description string) (Task, error)

	// SetCompleted marks a task completed or open.
	SetCompleted(ctx context.Context, id int64, completed bool) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}
