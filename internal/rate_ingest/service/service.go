package service

import (
	"context"
	"log/slog"

	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

type Service struct {
	storage Storage
	redis   RedisStorage
	catalog Catalog
}

// NewService accepts a nil redis; reads then go straight to storage.
func NewService(storage Storage, redis RedisStorage, catalog Catalog) *Service {
	return &Service{
		storage: storage,
		redis:   redis,
		catalog: catalog,
	}
}

// LatestRates serves the newest snapshot, from the redis copy when it is
// there. ErrNoData means nothing was ever ingested.
func (s *Service) LatestRates(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "service.LatestRates"

	if s.redis != nil {
		snap, err := s.redis.Latest(ctx)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, entities.ErrNoData) {
			slog.Warn("Redis read failed, falling back to storage", "op", op, "error", err)
		}
	}

	snap, err := s.storage.LatestSnapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return snap, nil
}

func (s *Service) Currencies(ctx context.Context) []entities.Currency {
	return s.catalog.Currencies(ctx)
}
