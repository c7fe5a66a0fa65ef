package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	// sqlite driver
	_ "modernc.org/sqlite"
)

const sqliteParams = "?_pragma=busy_timeout(5000)"

type sqliteConfig interface {
	Path() string
}

type SQLiteStorage struct {
	sqlStorage
}

func NewSQLiteStorage(config sqliteConfig) (*SQLiteStorage, error) {
	path := config.Path()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}
	dsn := path + sqliteParams

	if err := runMigrations(dialectSQLite, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open database")
	}
	// single writer
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot open database")
	}
	return &SQLiteStorage{sqlStorage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now:     time.Now,
	}}, nil
}
