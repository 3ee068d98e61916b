package service

import (
	"context"

	"github.com/langowen/converter/internal/entities"
)

type RedisStorage interface {
	Latest(ctx context.Context) (*entities.RateSnapshot, error)
}
