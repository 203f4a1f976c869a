package utils

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// HaversineDistance вычисляет расстояние между двумя точками в метрах.
// Невалидные (не конечные) координаты дают +Inf: это гарантирует промах
// кеша и дедупликации вместо ложного совпадения или паники.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	if !isFinite(lat1) || !isFinite(lng1) || !isFinite(lat2) || !isFinite(lng2) {
		return math.Inf(1)
	}

	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lng float64) bool {
	return isFinite(lat) && isFinite(lng) &&
		lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// FormatDistance форматирует расстояние: метры до километра, дальше - километры
func FormatDistance(meters float64) string {
	if !isFinite(meters) || meters < 0 {
		return "unknown"
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
