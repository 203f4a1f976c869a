package domain

import "time"

// SearchQuery - параметры одного поиска. Не персистится.
type SearchQuery struct {
	Center       Point `json:"center"`
	Zoom         int   `json:"zoom"`
	RadiusMeters int   `json:"radius_meters"`
}

// RadiusForZoom возвращает радиус поиска в метрах по уровню зума.
// Чем ближе карта, тем меньше радиус.
func RadiusForZoom(zoom int) int {
	switch {
	case zoom >= 17:
		return 300
	case zoom >= 16:
		return 600
	case zoom >= 15:
		return 1500
	case zoom >= 13:
		return 2000
	default:
		return 2500
	}
}

// CacheEntry - закешированный результат поиска external-провайдера.
// Location хранит исходный (неокруглённый) центр запроса: выборка идёт
// по ближайшей записи, а не по точному совпадению ключа.
type CacheEntry struct {
	Key          string        `json:"key"`
	Location     Point         `json:"location"`
	Spots        []ParkingSpot `json:"spots"`
	Timestamp    time.Time     `json:"timestamp"`
	LastAccessed time.Time     `json:"last_accessed"`
}

// RateLimiterState - состояние лимитера, переживает рестарт процесса
type RateLimiterState struct {
	RecentCalls    map[string]time.Time `json:"recent_calls"`
	DailyCallCount int                  `json:"daily_call_count"`
	DailyResetAt   time.Time            `json:"daily_reset_at"`
}

// SearchSnapshot - публикуемый результат: объединённый отсортированный
// список плюс флаги для индикации в UI
type SearchSnapshot struct {
	Spots     []ParkingSpot `json:"spots"`
	Searching bool          `json:"searching"`
	Connected bool          `json:"connected"`
	UpdatedAt time.Time     `json:"updated_at"`
}
