package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

const (
	insertSnapshotQuery = `
		INSERT INTO exchange_rates (id, base_currency, rates, last_updated)
		VALUES ($1, $2, $3, now())
		RETURNING last_updated`

	latestSnapshotQuery = `
		SELECT id, base_currency, rates, last_updated
		FROM exchange_rates
		ORDER BY last_updated DESC
		LIMIT 1`
)

// SaveSnapshot writes one full row. The id and timestamp are assigned here
// and by the database; the returned snapshot carries both.
func (s *Storage) SaveSnapshot(ctx context.Context, snap *entities.RateSnapshot) (*entities.RateSnapshot, error) {
	const op = "storage.postgres.SaveSnapshot"

	rates, err := json.Marshal(snap.Rates)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	id := uuid.NewString()

	var lastUpdated time.Time
	err = s.db.QueryRow(ctx, insertSnapshotQuery, id, snap.Base, rates).Scan(&lastUpdated)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	saved, err := entities.NewSnapshot(snap.Base, snap.Rates, lastUpdated)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	saved.ID = id

	return saved, nil
}

// LatestSnapshot returns the newest row. An empty table is ErrNoData.
func (s *Storage) LatestSnapshot(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "storage.postgres.LatestSnapshot"

	var (
		id          string
		base        string
		rawRates    []byte
		lastUpdated time.Time
	)

	err := s.db.QueryRow(ctx, latestSnapshotQuery).Scan(&id, &base, &rawRates, &lastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var rates map[string]float64
	if err = json.Unmarshal(rawRates, &rates); err != nil {
		return nil, errors.Wrap(err, op)
	}

	snap, err := entities.NewSnapshot(base, rates, lastUpdated)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	snap.ID = id

	return snap, nil
}
