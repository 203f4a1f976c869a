package domain

// Point представляет координату на карте
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SpotSource - источник данных о парковке
type SpotSource string

const (
	// SourceInventory - собственные парковки с достоверной информацией о занятости
	SourceInventory SpotSource = "inventory"
	// SourceExternal - парковки из стороннего places-провайдера
	SourceExternal SpotSource = "external"
)

// ParkingSpot - унифицированное представление парковки из двух источников.
// Набор пересоздаётся целиком при каждой публикации, элементы не мутируются.
type ParkingSpot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Address  string     `json:"address,omitempty"`
	Location Point      `json:"location"`
	Source   SpotSource `json:"source"`

	// AvailableSpaces имеет смысл только для inventory-источника.
	// Для external-источника занятость неизвестна, используется IsOpen.
	AvailableSpaces int     `json:"available_spaces"`
	TotalSpaces     int     `json:"total_spaces,omitempty"`
	PricePerHour    float64 `json:"price_per_hour,omitempty"`
	IsOpen          bool    `json:"is_open"`

	Rating          *float64 `json:"rating,omitempty"`
	UserRatingCount *int     `json:"user_rating_count,omitempty"`

	// Distance - расстояние в метрах от центра последнего поиска.
	// Пересчитывается при каждой сортировке.
	Distance float64 `json:"distance"`
}

// ParkingLot - парковка из inventory-бэкенда (ответ REST API)
type ParkingLot struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	AvailableSpaces int     `json:"available_spaces"`
	TotalSpaces     int     `json:"total_spaces"`
	PricePerHour    float64 `json:"price_per_hour"`
}

// Place - сырой результат стороннего places-провайдера
type Place struct {
	ProviderID       string   `json:"provider_id"`
	DisplayName      string   `json:"display_name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         Point    `json:"location"`
	BusinessStatus   string   `json:"business_status"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingCount  *int     `json:"user_rating_count,omitempty"`
}

// IsOperational проверяет, что место работает (открыто или статус неизвестен)
func (p *Place) IsOperational() bool {
	return p.BusinessStatus == "" || p.BusinessStatus == "OPERATIONAL"
}
