package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/database"
)

// nativePgx selects the pgxpool cursor instead of database/sql.
const nativePgx = "pgxpool"

func runQuery(ctx context.Context, settings *config.Settings, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	var (
		driver  = fs.String("driver", settings.DatabaseDriver, "Driver: sqlite, pgx or pgxpool")
		dsn     = fs.String("dsn", settings.DatabaseDSN, "Data source name")
		dialect = fs.String("dialect", settings.DatabaseDialect, "Placeholder style for database/sql: question, dollar, atp")
		table   = fs.String("table", "", "Table name")
		column  = fs.String("column", "", "Column to select, or to match with -where")
		where   = fs.String("where", "", "Return the first row whose column equals this value")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: gobase query -table T -column C [-where VALUE]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *table == "" || *column == "" {
		fs.Usage()
		return flag.ErrHelp
	}
	if *dsn == "" {
		return errors.New("no DSN: pass -dsn or set GOBASE_DB_DSN")
	}

	var cur database.Cursor
	if *driver == nativePgx {
		pool, err := database.OpenPool(ctx, *dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		cur = database.NewPgxCursor(pool)
	} else {
		d, err := database.ParseDialect(*dialect)
		if err != nil {
			return err
		}
		// PostgreSQL only understands $n.
		if *driver == "pgx" && !flagSet(fs, "dialect") {
			d = database.DialectDollar
		}
		db, err := database.Open(ctx, *driver, *dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		cur = database.NewSQLCursor(db, d)
	}

	if flagSet(fs, "where") {
		row, err := database.SelectWhere(ctx, cur, *table, *column, *where)
		if err != nil {
			return err
		}
		if row == nil {
			fmt.Println("no matching row")
			return nil
		}
		for i, c := range row.Columns {
			fmt.Printf("%s\t%v\n", c, formatValue(row.Values[i]))
		}
		return nil
	}

	values, err := database.SelectColumn(ctx, cur, *table, *column)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Println(formatValue(v))
	}
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// flagSet reports whether the named flag was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
