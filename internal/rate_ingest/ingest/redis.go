package ingest

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type RedisStorage interface {
	PublishUpdated(ctx context.Context, id string) error
	SetLatest(ctx context.Context, snap *entities.RateSnapshot) error
}
