// Package migrations holds the SQLite schema migrations and the runner
// that applies them. Migrations are plain SQL files embedded into the
// binary and applied in lexical order, tracked in a schema_migrations
// table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
