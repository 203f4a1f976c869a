package repository

import (
	"github.com/parkiusource/parking-radar/internal/domain"
)

// SpotCacheRepository - географический кеш результатов external-поиска.
// Выборка по ближайшей записи в пределах порога, а не по точному ключу.
type SpotCacheRepository interface {
	// Get возвращает ближайшую живую запись в пределах порога или nil
	Get(center domain.Point) *domain.CacheEntry

	// Set сохраняет результат поиска под округлённым ключом центра
	Set(center domain.Point, spots []domain.ParkingSpot)

	// InvalidateAll сбрасывает все записи (после админских изменений)
	InvalidateAll()
}
