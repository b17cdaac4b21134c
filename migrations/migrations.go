// Package migrations holds the database schema and applies it with goose.
// Each goose dialect has its own directory under sql/. MySQL timestamp
// columns are DATETIME, never TIMESTAMP.
package migrations

import (
	"database/sql"
	"embed"
	"path"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed sql/mysql/*.sql sql/postgres/*.sql
var files embed.FS

// gooseDialect maps a database/sql driver name onto a goose dialect.
func gooseDialect(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "pgx", "postgres":
		return "postgres", nil
	default:
		return "", errors.Errorf("migrations: no goose dialect for driver %q", driver)
	}
}

// dir is the embedded directory holding the migrations of dialect.
func dir(dialect string) string {
	return path.Join("sql", dialect)
}

// Up applies all pending migrations.
func Up(db *sql.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(files)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "migrations: error setting dialect")
	}
	if err := goose.Up(db, dir(dialect)); err != nil {
		return errors.Wrap(err, "migrations: error applying migrations")
	}
	return nil
}
