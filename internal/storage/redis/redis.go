package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Snoopiam/sales-offer-sub000/internal/config"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Storage backs the state document with a Redis instance. A maxmemory-limited
// instance answers oversized writes with an OOM error, which maps onto the
// quota error the degradation ladder expects.
type Storage struct {
	client *redis.Client
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{client: client}, nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	const op = "storage.redis.Get"

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

func (s *Storage) Set(ctx context.Context, key string, value string) error {
	const op = "storage.redis.Set"

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		if isCapacityErr(err) {
			return storage.ErrQuotaExceeded
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// isCapacityErr matches the reply of a maxmemory-limited instance:
// "OOM command not allowed when used memory > 'maxmemory'".
func isCapacityErr(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "OOM")
}

func (s *Storage) Close() error {
	return s.client.Close()
}
