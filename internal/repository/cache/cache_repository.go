package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyLimiterState = "radar:limiter:state"
	keySpotEntries  = "radar:spots:entries"

	// Состояние лимитера должно пережить сутки, чтобы дневной счётчик не обнулялся рестартом
	limiterStateTTL = 25 * time.Hour
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetLimiterState читает сохранённое состояние rate limiter'а
func (r *cacheRepository) GetLimiterState(ctx context.Context) (*domain.RateLimiterState, error) {
	data, err := r.Get(ctx, keyLimiterState)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var state domain.RateLimiterState
	if err := json.Unmarshal(data, &state); err != nil {
		r.logger.Error("Failed to unmarshal limiter state from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal limiter state: %w", err)
	}

	return &state, nil
}

// SetLimiterState сохраняет состояние rate limiter'а
func (r *cacheRepository) SetLimiterState(ctx context.Context, state *domain.RateLimiterState) error {
	data, err := json.Marshal(state)
	if err != nil {
		r.logger.Error("Failed to marshal limiter state", zap.Error(err))
		return fmt.Errorf("marshal limiter state: %w", err)
	}

	return r.Set(ctx, keyLimiterState, data, limiterStateTTL)
}

// GetSpotEntries читает снапшот записей географического кеша
func (r *cacheRepository) GetSpotEntries(ctx context.Context) ([]domain.CacheEntry, error) {
	data, err := r.Get(ctx, keySpotEntries)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var entries []domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Error("Failed to unmarshal spot entries from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal spot entries: %w", err)
	}

	return entries, nil
}

// SetSpotEntries сохраняет снапшот записей географического кеша
func (r *cacheRepository) SetSpotEntries(ctx context.Context, entries []domain.CacheEntry, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		r.logger.Error("Failed to marshal spot entries", zap.Error(err))
		return fmt.Errorf("marshal spot entries: %w", err)
	}

	return r.Set(ctx, keySpotEntries, data, ttl)
}
