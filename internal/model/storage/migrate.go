package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

// runMigrations applies the embedded schema on a dedicated connection,
// migrate closes the database it was given.
func runMigrations(dialect, dsn string) error {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer db.Close()

	var driver database.Driver
	switch dialect {
	case dialectPostgres:
		driver, err = mpostgres.WithInstance(db, &mpostgres.Config{})
	case dialectSQLite:
		driver, err = msqlite.WithInstance(db, &msqlite.Config{})
	default:
		return errors.Errorf("unknown dialect %q", dialect)
	}
	if err != nil {
		return errors.Wrap(err, "init migration driver")
	}

	src, err := iofs.New(migrations, "migrations/"+dialect)
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}
	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("schema is up to date", zap.String("dialect", dialect))
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	logger.Info("schema migrated", zap.String("dialect", dialect))
	return nil
}
