package repository

import (
	"context"

	"github.com/parkiusource/parking-radar/internal/domain"
)

// InventoryRepository - интерфейс собственного parking-бэкенда.
// Inventory загружается целиком и не проходит через кеш и rate limiter.
type InventoryRepository interface {
	// FetchParkingLots возвращает все парковки с достоверной занятостью
	FetchParkingLots(ctx context.Context) ([]domain.ParkingLot, error)
}
