package service

import (
	"context"
	"fmt"

	"github.com/okvist/taskboard/internal/domain"
)

const (
	titleMinLen = 3
	titleMaxLen = 100
	descMaxLen  = 500

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// TaskService executes task commands and queries on behalf of an
// authenticated caller, enforcing field invariants and the ownership
// policy.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTaskInput is the pre-validated payload for task creation. There
// is deliberately no owner field: CreatedBy always comes from the
// caller, so client-supplied ownership is not representable.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.Status
}

// UpdateTaskInput is a partial patch; nil fields are left unchanged.
// Immutable fields (id, created_by, created_at) are not representable.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.Status
}

// Empty reports whether the patch changes nothing.
func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil
}

// TaskList is one page of tasks with pagination metadata. Total and
// Pages reflect the full scope+filter match even when Items is empty.
type TaskList struct {
	Items []domain.Task
	Page  int
	Limit int
	Total int
	Pages int
}

// Create stores a new task owned by the caller. Status defaults to
// pending when omitted; timestamps are server-assigned.
func (s *TaskService) Create(ctx context.Context, caller domain.Caller, in CreateTaskInput) (*domain.Task, error) {
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	if err := validateTaskFields(in.Title, in.Description, in.Status); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedBy:   caller.UserID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Get returns a task if it exists and is visible to the caller,
// ErrNotFound otherwise.
func (s *TaskService) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTask(caller, task) {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// List returns one page of tasks within the caller's scope, filtered
// and ordered newest-created first. Out-of-range paging values clamp to
// their defaults instead of failing; a page past the end yields an
// empty item list with true totals.
func (s *TaskService) List(ctx context.Context, caller domain.Caller, filter domain.TaskFilter, page, limit int) (*TaskList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		filter.Status = ""
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	scope := ScopeFor(caller)

	total, err := s.tasks.Count(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	items, err := s.tasks.List(ctx, scope, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &TaskList{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// Update applies a partial patch to a task the caller may modify.
// Invisible tasks surface as ErrNotFound regardless of existence.
func (s *TaskService) Update(ctx context.Context, caller domain.Caller, id int64, in UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTask(caller, task) {
		return nil, domain.ErrNotFound
	}

	if in.Empty() {
		return nil, fmt.Errorf("%w: at least one field is required for update", domain.ErrInvalidInput)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if err := validateTaskFields(task.Title, task.Description, task.Status); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete permanently removes a task the caller may modify.
func (s *TaskService) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccessTask(caller, task) {
		return domain.ErrNotFound
	}

	return s.tasks.Delete(ctx, task.ID)
}

// Stats returns per-status task counts within the caller's scope.
func (s *TaskService) Stats(ctx context.Context, caller domain.Caller) (domain.StatusCounts, error) {
	return s.tasks.CountByStatus(ctx, ScopeFor(caller))
}

func validateTaskFields(title, description string, status domain.Status) error {
	if len(title) < titleMinLen || len(title) > titleMaxLen {
		return fmt.Errorf("%w: title must be %d-%d characters", domain.ErrInvalidInput, titleMinLen, titleMaxLen)
	}
	if len(description) > descMaxLen {
		return fmt.Errorf("%w: description cannot exceed %d characters", domain.ErrInvalidInput, descMaxLen)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status must be pending, in-progress, or completed", domain.ErrInvalidInput)
	}
	return nil
}
