package dto

// ViewportRequest - событие остановки карты (settle) либо locate-жест.
// Координаты намеренно не ограничены тегами: невалидный центр не
// отклоняется, а заменяется на центр по умолчанию.
type ViewportRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom" validate:"omitempty,min=1,max=22"`
}

// LimiterUsageResponse - текущее потребление квот external-провайдера
type LimiterUsageResponse struct {
	CallsLastMinute int `json:"calls_last_minute"`
	CallsToday      int `json:"calls_today"`
	PerMinuteLimit  int `json:"per_minute_limit"`
	PerDayLimit     int `json:"per_day_limit"`
}
