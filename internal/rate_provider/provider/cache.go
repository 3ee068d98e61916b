package provider

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

// Cache is the local single-slot store of the last good snapshot.
type Cache interface {
	Load(ctx context.Context) (*entities.RateSnapshot, error)
	Save(ctx context.Context, snap *entities.RateSnapshot) error
}
