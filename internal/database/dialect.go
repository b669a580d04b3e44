package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects how bound parameters are written in a statement.
type Dialect int

const (
	// DialectQuestion uses "?" (ODBC, SQLite, MySQL).
	DialectQuestion Dialect = iota
	// DialectDollar uses "$1", "$2", ... (PostgreSQL).
	DialectDollar
	// DialectAtP uses "@p1", "@p2", ... (SQL Server).
	DialectAtP
)

// Placeholder returns the marker for the n-th parameter, counting from 1.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case DialectDollar:
		return "$" + strconv.Itoa(n)
	case DialectAtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

func (d Dialect) String() string {
	switch d {
	case DialectDollar:
		return "dollar"
	case DialectAtP:
		return "atp"
	default:
		return "question"
	}
}

// ParseDialect maps a config value to a Dialect. The empty string means
// DialectQuestion.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "question", "?", "odbc", "sqlite", "mysql":
		return DialectQuestion, nil
	case "dollar", "$", "postgres", "pgx":
		return DialectDollar, nil
	case "atp", "@p", "sqlserver", "mssql":
		return DialectAtP, nil
	default:
		return DialectQuestion, fmt.Errorf("unknown database dialect %q", s)
	}
}
