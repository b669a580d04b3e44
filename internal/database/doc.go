// Package database reads values out of a SQL database through a cursor.
//
// A Cursor is a caller-managed handle bound to an open connection. Two
// adapters are provided:
//
//	db, _ := database.Open(ctx, "sqlite", "file:data.db")
//	cur := database.NewSQLCursor(db, database.DialectQuestion)
//
//	pool, _ := database.OpenPool(ctx, "postgres://localhost/app")
//	cur := database.NewPgxCursor(pool)
//
// # Queries
//
//	names, err := database.SelectColumn(ctx, cur, "customers", "name")
//	row, err := database.SelectWhere(ctx, cur, "customers", "id", 42)
//	if row == nil {
//	    // no customer 42
//	}
//
// Table and column names are spliced into the statement as given and must
// come from trusted code. Only the compared value is sent as a bound
// parameter. Driver errors are returned wrapped, never translated or retried.
package database
