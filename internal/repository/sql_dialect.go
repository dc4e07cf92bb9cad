package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/config"
)

// placeholder returns the correct bind variable for the given index based on DB type.
// Postgres uses $1, $2... while MySQL and SQLite use ?
func placeholder(i int) string {
	db := config.GetSystemSettingString(config.DATABASE_TYPE)
	if db == config.DATABASE_TYPE_POSTGRES {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// placeholders returns n comma separated bind variables starting at index 1.
func placeholders(n int) string {
	pps := make([]string, 0, n)
	for i := range n {
		pps = append(pps, placeholder(i+1))
	}
	return strings.Join(pps, ", ")
}

func supportsReturning() bool {
	return config.GetSystemSettingString(config.DATABASE_TYPE) == config.DATABASE_TYPE_POSTGRES
}

func formatDateInDatabase(t time.Time) string {
	switch config.GetSystemSettingString(config.DATABASE_TYPE) {
	case config.DATABASE_TYPE_SQLLITE:
		return t.UTC().Format("2006-01-02 15:04:05.000")
	case config.DATABASE_TYPE_MYSQL:
		return t.UTC().Format("2006-01-02 15:04:05.000000")
	}
	// PostgreSQL supports RFC3339
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDateInDatabaseNull(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return formatDateInDatabase(t.Time)
}

// insertReturningID runs an INSERT and reports the generated key, using RETURNING
// where the dialect has it and LastInsertId otherwise.
func insertReturningID(ctx context.Context, db *sql.DB, base string, vals ...any) (int64, error) {
	var id int64
	if supportsReturning() {
		err := db.QueryRowContext(ctx, base+" RETURNING id", vals...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, base, vals...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
