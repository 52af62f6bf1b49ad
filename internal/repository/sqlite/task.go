package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okvist/taskboard/internal/domain"
)

// TaskRepository implements domain.TaskRepository using SQLite.
// Reads left-join the users table so tasks carry their owner's name;
// the join is LEFT because created_by is a weak reference.
type TaskRepository struct {
	db *sql.DB
}

const taskColumns = `t.id, t.title, t.description, t.status, t.created_by,
	COALESCE(u.name, ''), t.created_at, t.updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.Status, task.CreatedBy, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now

	// Denormalize the owner name for the response.
	err = r.db.QueryRowContext(ctx, "SELECT name FROM users WHERE id = ?", task.CreatedBy).Scan(&task.OwnerName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query owner name: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task := &domain.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t LEFT JOIN users u ON u.id = t.created_by
		 WHERE t.id = ?`, id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatedBy,
		&task.OwnerName, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task by id: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context, scope domain.TaskScope, filter domain.TaskFilter, offset, limit int) ([]domain.Task, error) {
	where, args := buildTaskWhere(scope, filter)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t LEFT JOIN users u ON u.id = t.created_by
		 `+where+`
		 ORDER BY t.created_at DESC, t.id ASC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedBy,
			&t.OwnerName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Count(ctx context.Context, scope domain.TaskScope, filter domain.TaskFilter) (int, error) {
	where, args := buildTaskWhere(scope, filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks t `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title, task.Description, task.Status, now, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, scope domain.TaskScope) (domain.StatusCounts, error) {
	query := "SELECT t.status, COUNT(*) FROM tasks t"
	var args []any
	if scope.OwnerID != 0 {
		query += " WHERE t.created_by = ?"
		args = append(args, scope.OwnerID)
	}
	query += " GROUP BY t.status"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	var counts domain.StatusCounts
	for rows.Next() {
		var status domain.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.StatusCounts{}, fmt.Errorf("scan status count: %w", err)
		}
		switch status {
		case domain.StatusPending:
			counts.Pending = n
		case domain.StatusInProgress:
			counts.InProgress = n
		case domain.StatusCompleted:
			counts.Completed = n
		}
		counts.Total += n
	}
	return counts, rows.Err()
}

// buildTaskWhere assembles the WHERE clause shared by List and Count.
// Scope is applied before filters so a non-admin can never widen their
// visibility through filter values.
func buildTaskWhere(scope domain.TaskScope, filter domain.TaskFilter) (string, []any) {
	var conds []string
	var args []any

	if scope.OwnerID != 0 {
		conds = append(conds, "t.created_by = ?")
		args = append(args, scope.OwnerID)
	}
	if filter.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		// SQLite LIKE is case-insensitive for ASCII. Only the title is
		// searched, never the description.
		conds = append(conds, `t.title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
