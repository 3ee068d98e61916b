package ingest

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type FiatClient interface {
	FetchFiat(ctx context.Context, base string) (*entities.FiatTable, error)
}

type CryptoClient interface {
	FetchRate(ctx context.Context, base, code string) (float64, error)
}
