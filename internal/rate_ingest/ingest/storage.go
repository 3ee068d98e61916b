package ingest

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type Storage interface {
	SaveSnapshot(ctx context.Context, snap *entities.RateSnapshot) (*entities.RateSnapshot, error)
}
