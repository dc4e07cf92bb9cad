package approvalflow

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RealZimboGuy/approvalflow/internal/config"
	"github.com/RealZimboGuy/approvalflow/internal/migrations"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// openDatabase migrates and opens the configured database.
func openDatabase() (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch config.GetSystemSettingString(config.DATABASE_TYPE) {
	case config.DATABASE_TYPE_POSTGRES:
		db, err = setupPostgresDatabase()
	case config.DATABASE_TYPE_MYSQL:
		db, err = setupMysqlDatabase()
	case config.DATABASE_TYPE_SQLLITE:
		// sqlite serialises writers anyway, one connection avoids "database is locked"
		db, err = setupSqlLiteDatabase()
		if err == nil {
			db.SetMaxOpenConns(1)
			return db, nil
		}
	default:
		return nil, config.Validate()
	}
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(config.GetSystemSettingInteger(config.DATABASE_MAX_OPEN_CONNS))
	db.SetMaxIdleConns(config.GetSystemSettingInteger(config.DATABASE_MAX_IDLE_CONNS))
	db.SetConnMaxLifetime(config.GetSystemSettingDuration(config.DATABASE_CONN_MAX_LIFETIME))
	return db, nil
}

func setupPostgresDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	slog.Info("Using Postgres database")
	slog.Info("Running migrations")
	if err := migrations.Up(migrations.DirPostgres, dbURL); err != nil {
		return nil, fmt.Errorf("postgres migration failed: %w", err)
	}
	slog.Info("Opening Postgres database")
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func setupSqlLiteDatabase() (*sql.DB, error) {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	if fileName == "" {
		return nil, fmt.Errorf("%s must be set", config.DATABASE_SQLLITE_FILE_NAME)
	}
	slog.Info("Using SQLite database", "file", fileName)
	slog.Info("Running migrations")
	if err := migrations.Up(migrations.DirSqlLite, "sqlite3://"+fileName); err != nil {
		return nil, fmt.Errorf("sqlite migration failed: %w", err)
	}
	slog.Info("Opening SQLite database")
	db, err := sql.Open("sqlite3", fileName+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func setupMysqlDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if !strings.Contains(dbURL, "parseTime=true") {
		return nil, fmt.Errorf("%s_DATABASE_URL must contain 'parseTime=true' for MySQL", config.ENV_PREFIX)
	}
	if !strings.HasPrefix(dbURL, "mysql://") {
		return nil, fmt.Errorf("%s_DATABASE_URL must start with 'mysql://' for MySQL", config.ENV_PREFIX)
	}
	slog.Info("Using MySQL database")
	slog.Info("Running migrations")
	if err := migrations.Up(migrations.DirMysql, dbURL); err != nil {
		return nil, fmt.Errorf("mysql migration failed: %w", err)
	}
	slog.Info("Opening MySQL database")
	// the driver takes a plain DSN, the scheme is only for golang-migrate
	db, err := sql.Open("mysql", strings.TrimPrefix(dbURL, "mysql://"))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}
