package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const dsnTemplate = "user=%s password=%s host=%s port=%d dbname=%s sslmode=%s"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresConfig interface {
	Host() string
	Port() int
	Username() string
	Password() string
	Database() string
	SSLMode() string
}

type PostgresStorage struct {
	sqlStorage
}

func NewPostgresStorage(config postgresConfig) (*PostgresStorage, error) {
	dsn := fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Port(),
		config.Database(),
		config.SSLMode())

	if err := runMigrations(dialectPostgres, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{sqlStorage{db: db, builder: psql, now: time.Now}}, nil
}
