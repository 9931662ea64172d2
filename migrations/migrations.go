// Package migrations carries the embedded database schema and applies it on
// startup.
package migrations

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed *.sql
var fs embed.FS

// Up applies all pending migrations. Already-applied migrations are a no-op.
func Up(db *sqlx.DB) error {
	src, err := iofs.New(fs, ".")
	if err != nil {
		return err
	}

	driver, err := pgx.WithInstance(db.DB, &pgx.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
