// Package service defines the backend-agnostic contract for task operations.
package service

import "time"

// Task represents a single task record owned by the server.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool

	// Optional metadata, zero when the server omits it.
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
}

// Filter restricts a listing by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "true"
	FilterOpen      Filter = "false"
)

// Query selects one page of tasks.
type Query struct {
	Page    int
	PerPage int
	Filter  Filter
}
