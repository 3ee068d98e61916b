package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// DB is the subset of *pgxpool.Pool the storage uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func InitStorage(ctx context.Context, dsn string, timeout time.Duration) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(pool), nil
}

func (s *Storage) Close() {
	s.db.Close()
}
