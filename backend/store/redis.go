package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"roadmaptracker/backend/models"
)

type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(addr, password string, db int, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context, userKey string) (*models.ProgressDocument, error) {
	data, err := s.client.Get(ctx, progressKeyPrefix+userKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewProgressDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get progress: %w", err)
	}
	return decode(data, userKey, s.logger), nil
}

func (s *RedisStore) Save(ctx context.Context, userKey string, doc *models.ProgressDocument) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, progressKeyPrefix+userKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
