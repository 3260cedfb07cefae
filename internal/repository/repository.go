package repository

import (
	"context"
	"database/sql"
)

// Querier abstracts *sql.DB and *sql.Tx so that repository methods can run
// standalone or as part of the checkout transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
