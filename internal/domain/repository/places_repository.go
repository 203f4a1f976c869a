package repository

import (
	"context"

	"github.com/parkiusource/parking-radar/internal/domain"
)

// PlacesRepository - интерфейс стороннего places-провайдера.
// Вызовы квотируются rate limiter'ом, ошибки не должны уходить выше оркестратора.
type PlacesRepository interface {
	// SearchNearby ищет места рядом с центром в заданном радиусе
	SearchNearby(ctx context.Context, center domain.Point, radiusMeters int, keyword string) ([]domain.Place, error)
}
