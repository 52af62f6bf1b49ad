package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okvist/taskboard/internal/domain"
	"github.com/okvist/taskboard/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB bundles the SQLite connection with its repositories.
type DB struct {
	sqlDB *sql.DB
	users *UserRepository
	tasks *TaskRepository
}

// New opens a SQLite database at the given path and configures it for
// use. It enables WAL mode and limits the pool to a single connection,
// which is how SQLite behaves best under concurrent writers.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		sqlDB: db,
		users: &UserRepository{db: db},
		tasks: &TaskRepository{db: db},
	}, nil
}

// Migrate applies any pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.sqlDB)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.sqlDB.Close()
}

// Users returns the user repository.
func (d *DB) Users() domain.UserRepository {
	return d.users
}

// Tasks returns the task repository.
func (d *DB) Tasks() domain.TaskRepository {
	return d.tasks
}
