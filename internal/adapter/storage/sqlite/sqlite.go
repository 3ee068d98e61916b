package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/langowen/converter/internal/entities"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	schemaQuery = `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL)`

	loadQuery = `SELECT value FROM kv WHERE key = ?`

	saveQuery = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// Storage is a single-slot local cache for the last good rate snapshot.
type Storage struct {
	db  *sql.DB
	key string
}

func InitStorage(ctx context.Context, path, key string) (*Storage, error) {
	const op = "storage.sqlite.InitStorage"

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schemaQuery); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, op)
	}

	return &Storage{
		db:  db,
		key: key,
	}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Load returns the cached snapshot. An empty slot is ErrNoData.
func (s *Storage) Load(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "storage.sqlite.Load"

	var value string
	err := s.db.QueryRowContext(ctx, loadQuery, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var snap entities.RateSnapshot
	if err = json.Unmarshal([]byte(value), &snap); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if snap.Len() == 0 {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}

	return &snap, nil
}

// Save overwrites the slot with snap.
func (s *Storage) Save(ctx context.Context, snap *entities.RateSnapshot) error {
	const op = "storage.sqlite.Save"

	value, err := json.Marshal(struct {
		Base      string             `json:"base"`
		Rates     map[string]float64 `json:"rates"`
		Timestamp time.Time          `json:"timestamp"`
	}{snap.Base, snap.Rates, snap.Timestamp})
	if err != nil {
		return errors.Wrap(err, op)
	}

	if _, err = s.db.ExecContext(ctx, saveQuery, s.key, string(value), time.Now().UTC()); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}
