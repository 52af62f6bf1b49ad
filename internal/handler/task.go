package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/okvist/taskboard/internal/domain"
	"github.com/okvist/taskboard/internal/service"
)

// TaskHandler handles task resource HTTP requests. Every route is
// behind RequireAuth, so a caller identity is always present in the
// context.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (r createTaskRequest) validate() map[string]string {
	fields := make(map[string]string)
	if r.Title == "" {
		fields["title"] = "Title is required"
	} else if len(r.Title) < 3 || len(r.Title) > 100 {
		fields["title"] = "Title must be 3-100 characters"
	}
	if len(r.Description) > 500 {
		fields["description"] = "Description cannot exceed 500 characters"
	}
	if r.Status != "" && !domain.Status(r.Status).Valid() {
		fields["status"] = "Status must be pending, in-progress, or completed"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// HandleCreate creates a task owned by the caller. Any owner or
// timestamp fields in the payload are simply not decoded.
// POST /api/tasks
// Response: 201 {"task": {...}}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req createTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := req.validate(); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	task, err := h.tasks.Create(r.Context(), caller, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
	})
	if err != nil {
		h.writeTaskError(w, err, "create task")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"task": toTaskDTO(task),
	})
}

// HandleList returns one page of tasks visible to the caller.
// GET /api/tasks?status=&search=&page=&limit=
// Response: 200 {"tasks":[...],"pagination":{...}}
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	q := r.URL.Query()
	filter := domain.TaskFilter{
		Status: domain.Status(q.Get("status")),
		Search: q.Get("search"),
	}
	// Malformed paging values parse to zero and clamp to defaults in
	// the service instead of failing the request.
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	list, err := h.tasks.List(r.Context(), caller, filter, page, limit)
	if err != nil {
		h.writeTaskError(w, err, "list tasks")
		return
	}

	writeJSON(w, http.StatusOK, toTaskListDTO(list))
}

// HandleStats returns per-status counts within the caller's scope.
// GET /api/tasks/stats
// Response: 200 {"stats": {...}}
func (h *TaskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	counts, err := h.tasks.Stats(r.Context(), caller)
	if err != nil {
		h.writeTaskError(w, err, "task stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": toStatsDTO(counts),
	})
}

// HandleGet returns a single task.
// GET /api/tasks/{id}
// Response: 200 {"task": {...}} or 404
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	task, err := h.tasks.Get(r.Context(), caller, id)
	if err != nil {
		h.writeTaskError(w, err, "get task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task": toTaskDTO(task),
	})
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (r updateTaskRequest) validate() map[string]string {
	fields := make(map[string]string)
	if r.Title == nil && r.Description == nil && r.Status == nil {
		fields["_"] = "At least one field is required for update"
	}
	if r.Title != nil && (len(*r.Title) < 3 || len(*r.Title) > 100) {
		fields["title"] = "Title must be 3-100 characters"
	}
	if r.Description != nil && len(*r.Description) > 500 {
		fields["description"] = "Description cannot exceed 500 characters"
	}
	if r.Status != nil && !domain.Status(*r.Status).Valid() {
		fields["status"] = "Status must be pending, in-progress, or completed"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// HandleUpdate applies a partial update to a task the caller owns (or
// any task, for admins). Immutable fields in the payload are ignored
// because the request type cannot represent them.
// PUT /api/tasks/{id}
// Response: 200 {"task": {...}} or 404
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	var req updateTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := req.validate(); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		in.Status = &status
	}

	task, err := h.tasks.Update(r.Context(), caller, id, in)
	if err != nil {
		h.writeTaskError(w, err, "update task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task": toTaskDTO(task),
	})
}

// HandleDelete permanently deletes a task the caller owns (or any task,
// for admins).
// DELETE /api/tasks/{id}
// Response: 204 or 404
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found.")
		return
	}

	if err := h.tasks.Delete(r.Context(), caller, id); err != nil {
		h.writeTaskError(w, err, "delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeTaskError maps service errors to responses. ErrNotFound covers
// both absent tasks and tasks the caller may not see.
func (h *TaskHandler) writeTaskError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id")
	}
	return id, nil
}
