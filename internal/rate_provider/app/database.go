package app

import (
	"context"
	"sync"
	"time"

	"github.com/langowen/converter/internal/adapter/storage/postgres"
	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

// database connects on first use and retries on every call until a
// connection succeeds, so a database that comes up later is picked up by
// the next refresh.
type database struct {
	dsn     string
	timeout time.Duration

	mu      sync.Mutex
	storage *postgres.Storage
}

func newDatabase(dsn string, timeout time.Duration) *database {
	return &database{
		dsn:     dsn,
		timeout: timeout,
	}
}

func (d *database) Name() string {
	return "database"
}

func (d *database) Fetch(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "app.database.Fetch"

	storage, err := d.connect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return storage.LatestSnapshot(ctx)
}

func (d *database) Currencies(ctx context.Context) ([]entities.Currency, error) {
	const op = "app.database.Currencies"

	storage, err := d.connect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return storage.Currencies(ctx)
}

func (d *database) connect(ctx context.Context) (*postgres.Storage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.storage != nil {
		return d.storage, nil
	}

	storage, err := postgres.InitStorage(ctx, d.dsn, d.timeout)
	if err != nil {
		return nil, err
	}
	d.storage = storage

	return storage, nil
}

func (d *database) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.storage != nil {
		d.storage.Close()
		d.storage = nil
	}
}
