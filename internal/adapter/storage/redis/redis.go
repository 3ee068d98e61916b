package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"time"

	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	UpdatesChannel = "rates_updated"
	latestKey      = "rates:latest"
)

type Storage struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStorage(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{
		rdb: client,
		ttl: ttl,
	}
}

func InitStorage(ctx context.Context, options *redis.Options, ttl time.Duration) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(redisClient, ttl), nil
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

// PublishUpdated announces a freshly stored snapshot row.
func (s *Storage) PublishUpdated(ctx context.Context, id string) error {
	const op = "storage.redis.PublishUpdated"

	if err := s.rdb.Publish(ctx, UpdatesChannel, id).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) SetLatest(ctx context.Context, snap *entities.RateSnapshot) error {
	const op = "storage.redis.SetLatest"

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err = s.rdb.Set(ctx, latestKey, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// Latest returns the cached snapshot, or ErrNoData when nothing is cached.
func (s *Storage) Latest(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "storage.redis.Latest"

	data, err := s.rdb.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var snap entities.RateSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if snap.Len() == 0 {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}

	return &snap, nil
}

// Updates subscribes to the update channel and forwards every payload until
// ctx is done. The subscription is confirmed before Updates returns.
func (s *Storage) Updates(ctx context.Context) (<-chan string, error) {
	const op = "storage.redis.Updates"

	pubsub := s.rdb.Subscribe(ctx, UpdatesChannel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(classify(err), op)
	}

	out := make(chan string)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				slog.Debug("Received message", "channel", msg.Channel, "payload", msg.Payload)

				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return entities.ErrRedisTimeout
		}
		return entities.ErrRedisCanceled
	}
	if errors.Is(err, context.Canceled) {
		return entities.ErrRedisCanceled
	}

	return err
}
