package handler

import (
	"time"

	"github.com/okvist/taskboard/internal/domain"
	"github.com/okvist/taskboard/internal/service"
)

// UserDTO is the JSON representation of a user. The password hash is
// never part of it.
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// OwnerDTO is the expanded owner reference attached to tasks, for
// display only.
type OwnerDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	CreatedBy   OwnerDTO `json:"createdBy"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedBy:   OwnerDTO{ID: t.CreatedBy, Name: t.OwnerName},
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

// PaginationDTO carries list paging metadata. Total and Pages reflect
// the full match even when the requested page is past the end.
type PaginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TaskListDTO is the JSON response for a task list query.
type TaskListDTO struct {
	Tasks      []TaskDTO     `json:"tasks"`
	Pagination PaginationDTO `json:"pagination"`
}

func toTaskListDTO(list *service.TaskList) TaskListDTO {
	return TaskListDTO{
		Tasks: toTaskDTOs(list.Items),
		Pagination: PaginationDTO{
			Page:  list.Page,
			Limit: list.Limit,
			Total: list.Total,
			Pages: list.Pages,
		},
	}
}

// StatsDTO is the JSON representation of per-status task counts.
type StatsDTO struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in-progress"`
	Completed  int `json:"completed"`
}

func toStatsDTO(c domain.StatusCounts) StatsDTO {
	return StatsDTO{
		Total:      c.Total,
		Pending:    c.Pending,
		InProgress: c.InProgress,
		Completed:  c.Completed,
	}
}
