package repository

import (
	"context"
	"time"

	"github.com/parkiusource/parking-radar/internal/domain"
)

// CacheRepository - долговременное хранилище состояния кеша и лимитера.
// Хранилище advisory: любая ошибка чтения/записи деградирует до
// in-memory поведения и не должна прерывать вызывающего.
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil, nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetLimiterState читает сохранённое состояние rate limiter'а
	GetLimiterState(ctx context.Context) (*domain.RateLimiterState, error)

	// SetLimiterState сохраняет состояние rate limiter'а
	SetLimiterState(ctx context.Context, state *domain.RateLimiterState) error

	// GetSpotEntries читает снапшот записей географического кеша
	GetSpotEntries(ctx context.Context) ([]domain.CacheEntry, error)

	// SetSpotEntries сохраняет снапшот записей географического кеша
	SetSpotEntries(ctx context.Context, entries []domain.CacheEntry, ttl time.Duration) error
}
