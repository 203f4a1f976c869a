package usecase

import (
	"math"

	"github.com/parkiusource/parking-radar/internal/domain"
)

// coordTolerance - допуск совпадения координат (~50 м на экваторе):
// два места ближе этого порога считаются одной парковкой
const coordTolerance = 0.0005

// DedupeSpots убирает дубликаты: совпадение по ID либо по обеим
// координатам в пределах допуска. Остаётся первое вхождение, порядок
// сохраняется. Квадратичный проход приемлем на ожидаемых размерах (<=100).
func DedupeSpots(spots []domain.ParkingSpot) []domain.ParkingSpot {
	if len(spots) < 2 {
		return spots
	}

	result := make([]domain.ParkingSpot, 0, len(spots))
	for _, candidate := range spots {
		if !isDuplicate(result, candidate) {
			result = append(result, candidate)
		}
	}

	return result
}

func isDuplicate(kept []domain.ParkingSpot, candidate domain.ParkingSpot) bool {
	for i := range kept {
		if kept[i].ID == candidate.ID {
			return true
		}
		if closeEnough(kept[i].Location, candidate.Location) {
			return true
		}
	}
	return false
}

func closeEnough(a, b domain.Point) bool {
	dLat := math.Abs(a.Lat - b.Lat)
	dLng := math.Abs(a.Lng - b.Lng)
	// NaN-сравнения дают false, невалидные координаты не матчатся
	return dLat < coordTolerance && dLng < coordTolerance
}
