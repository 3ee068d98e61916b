package entities

import "errors"

var (
	ErrNotFound          = errors.New("entity not found")
	ErrNoData            = errors.New("source returned no rates")
	ErrSourceUnavailable = errors.New("rate source unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRedisTimeout      = errors.New("timeout waiting for Redis message")
	ErrRedisCanceled     = errors.New("redis subscription canceled")
)
