package database

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

// Rows iterates over a query result.
type Rows interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// Cursor executes queries on an already-open connection.
type Cursor interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	// Placeholder returns the bind marker for the n-th parameter.
	Placeholder(n int) string
}

// SQLQueryer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type SQLQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLCursor adapts database/sql to Cursor.
type SQLCursor struct {
	q       SQLQueryer
	dialect Dialect
}

// NewSQLCursor returns a cursor over q that writes placeholders in dialect.
func NewSQLCursor(q SQLQueryer, dialect Dialect) *SQLCursor {
	return &SQLCursor{q: q, dialect: dialect}
}

func (c *SQLCursor) Placeholder(n int) string { return c.dialect.Placeholder(n) }

func (c *SQLCursor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, cols: cols}, nil
}

type sqlRows struct {
	rows *sql.Rows
	cols []string
}

func (r *sqlRows) Columns() []string { return r.cols }
func (r *sqlRows) Next() bool        { return r.rows.Next() }
func (r *sqlRows) Err() error        { return r.rows.Err() }
func (r *sqlRows) Close() error      { return r.rows.Close() }

func (r *sqlRows) Values() ([]any, error) {
	vals := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

// PgxQueryer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PgxQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxCursor adapts pgx to Cursor. Placeholders are PostgreSQL style.
type PgxCursor struct {
	q PgxQueryer
}

// NewPgxCursor returns a cursor over a pgx pool, connection or transaction.
func NewPgxCursor(q PgxQueryer) *PgxCursor {
	return &PgxCursor{q: q}
}

func (c *PgxCursor) Placeholder(n int) string { return DialectDollar.Placeholder(n) }

func (c *PgxCursor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Columns() []string {
	fds := r.rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return cols
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Values() ([]any, error) { return r.rows.Values() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}
