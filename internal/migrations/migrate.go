package migrations

import (
	"errors"
	"fmt"
	"io/fs"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DirPostgres = "postgres"
	DirMysql    = "mysql"
	DirSqlLite  = "sqllite3"
)

// Up applies every pending migration in dir against dbURL. dbURL must carry the
// golang-migrate scheme (postgres://, mysql://, sqlite3://).
func Up(dir string, dbURL string) error {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return fmt.Errorf("opening migrations for %s: %w", dir, err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations for %s: %w", dir, err)
	}
	return nil
}
