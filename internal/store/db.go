package store

import (
	"context"
	"database/sql"
)

// DBTX captures the database/sql query methods shared by *sql.DB and
// *sql.Tx. Stores are written against it, so the same queries run
// directly on the pool or inside a transaction obtained through
// RunInTransaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
