package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPoolIface is the subset of pgxpool.Pool the application depends on.
// pgxmock satisfies it too, which is what the tests substitute.
type PgxPoolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Ping(ctx context.Context) error
}

// RowQuerier is satisfied by pools and transactions alike. It is the
// narrowest dependency of helpers that only ever read single rows.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
