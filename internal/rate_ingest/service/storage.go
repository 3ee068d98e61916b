package service

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type Storage interface {
	LatestSnapshot(ctx context.Context) (*entities.RateSnapshot, error)
}

type Catalog interface {
	Currencies(ctx context.Context) []entities.Currency
}
