// Package remote adapts the hosted task service for the sync core.
//
// The core consumes the Service interface; the HTTP client in this package
// is one implementation, and the tests substitute in-memory fakes.
package remote

import (
	"context"
	"time"
)

// TaskList identifies one remote task list. Titles are not unique across
// lists; the ID is the only stable handle.
type TaskList struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Updated time.Time `json:"updated"`
}

// Task is one task within a list. Position is the authoritative ordering
// key; Updated is informational and never used for ordering.
type Task struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Note     string    `json:"note,omitempty"`
	Position int       `json:"position"`
	Updated  time.Time `json:"updated"`
}

// NewTask carries the fields for a task creation.
type NewTask struct {
	Title string
	Note  string
}

// Service is the capability set the sync core needs from the task service.
//
// Implementations classify every failure as a *Error and never retry
// internally. ListTasks returns tasks sorted by Position ascending.
type Service interface {
	ListTaskLists(ctx context.Context, maxResults int) ([]TaskList, error)
	GetTaskList(ctx context.Context, id string) (TaskList, error)
	CreateTaskList(ctx context.Context, title string) (TaskList, error)
	RenameTaskList(ctx context.Context, id, newTitle string) error
	DeleteTaskList(ctx context.Context, id string) error
	ListTasks(ctx context.Context, listID string) ([]Task, error)
	CreateTask(ctx context.Context, listID string, t NewTask) (Task, error)
}
