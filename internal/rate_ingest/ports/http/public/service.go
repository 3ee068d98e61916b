package public

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type Service interface {
	LatestRates(ctx context.Context) (*entities.RateSnapshot, error)
	Currencies(ctx context.Context) []entities.Currency
}

type Ingestor interface {
	Ingest(ctx context.Context) (*entities.IngestResult, error)
}
