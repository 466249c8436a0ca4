package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := newStore(db, postgresDialect, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}
