package database

import (
	"context"
	"fmt"
)

// Row is one result row with its column names.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column.
func (r *Row) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// SelectColumn runs "SELECT <column> FROM <table>" and returns the first
// field of every row in result order. An empty table gives an empty slice.
func SelectColumn(ctx context.Context, cur Cursor, table, column string) ([]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", column, table)

	rows, err := cur.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s from %s: %w", column, table, err)
	}
	defer rows.Close()

	out := make([]any, 0)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("select %s from %s: %w", column, table, err)
		}
		if len(vals) > 0 {
			out = append(out, vals[0])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s from %s: %w", column, table, err)
	}
	return out, nil
}

// SelectWhere runs "SELECT * FROM <table> WHERE <column> = ?" with value
// bound and returns the first matching row, or nil when nothing matches.
func SelectWhere(ctx context.Context, cur Cursor, table, column string, value any) (*Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, column, cur.Placeholder(1))

	rows, err := cur.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("select from %s where %s: %w", table, column, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("select from %s where %s: %w", table, column, err)
		}
		return nil, nil
	}

	vals, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("select from %s where %s: %w", table, column, err)
	}
	return &Row{Columns: rows.Columns(), Values: vals}, nil
}
