package domain

import (
	"context"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task is a single work item. CreatedBy is set once from the
// authenticated creator and never reassigned. OwnerName is denormalized
// from the users table on reads for display purposes.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	CreatedBy   int64
	OwnerName   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskScope restricts queries to a visibility scope. OwnerID == 0 means
// all tasks (admin scope); otherwise only tasks created by that user.
type TaskScope struct {
	OwnerID int64
}

// TaskFilter holds optional list filters, combined with AND.
// Status filters on exact match when non-empty; Search matches the
// title case-insensitively as a substring.
type TaskFilter struct {
	Status Status
	Search string
}

// StatusCounts aggregates task counts per status within a scope.
// Total always equals Pending + InProgress + Completed.
type StatusCounts struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

// TaskRepository defines persistence operations for tasks. List and
// Count apply the same scope and filter so pagination metadata stays
// consistent with page contents.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, scope TaskScope, filter TaskFilter, offset, limit int) ([]Task, error)
	Count(ctx context.Context, scope TaskScope, filter TaskFilter) (int, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, scope TaskScope) (StatusCounts, error)
}
