package provider

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

// Source is one entry of the fallback chain. A nil snapshot with a nil
// error is treated as ErrNoData.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*entities.RateSnapshot, error)
}

type SourceFunc struct {
	name  string
	fetch func(ctx context.Context) (*entities.RateSnapshot, error)
}

func NewSource(name string, fetch func(ctx context.Context) (*entities.RateSnapshot, error)) SourceFunc {
	return SourceFunc{
		name:  name,
		fetch: fetch,
	}
}

func (s SourceFunc) Name() string {
	return s.name
}

func (s SourceFunc) Fetch(ctx context.Context) (*entities.RateSnapshot, error) {
	return s.fetch(ctx)
}
