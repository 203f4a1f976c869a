package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
)

// Тесты в этом файле проверяют внутренние инварианты цикла напрямую,
// без запуска event-loop: снаружи коллизию id двух источников не
// воспроизвести - синтетические external-id и inventory-id живут в
// разных пространствах имён.

func newBareOrchestrator() *SearchOrchestrator {
	return NewSearchOrchestrator(nil, nil, nil, nil, &config.SearchConfig{
		MinInterval:         2 * time.Second,
		MoveThresholdMeters: 30,
		RequestTimeout:      time.Second,
		DefaultCenterLat:    4.711,
		DefaultCenterLng:    -74.0721,
		DefaultZoom:         15,
		Keyword:             "parking",
	}, zap.NewNop())
}

func TestMergeSpots_InventoryWinsIDCollision(t *testing.T) {
	o := newBareOrchestrator()

	o.inventorySpots = []domain.ParkingSpot{{
		ID:              "lot-1",
		Name:            "Parqueadero Central",
		Location:        domain.Point{Lat: 4.711, Lng: -74.0721},
		Source:          domain.SourceInventory,
		AvailableSpaces: 12,
		TotalSpaces:     40,
	}}
	o.externalSpots = []domain.ParkingSpot{
		{
			ID:              "lot-1",
			Name:            "Central Parking (provider copy)",
			Location:        domain.Point{Lat: 4.711, Lng: -74.0721},
			Source:          domain.SourceExternal,
			AvailableSpaces: 0,
		},
		{
			ID:       "ext-abc-1",
			Name:     "Other Garage",
			Location: domain.Point{Lat: 4.715, Lng: -74.0721},
			Source:   domain.SourceExternal,
		},
	}

	merged := o.mergeSpots()

	require.Len(t, merged, 2)

	byID := make(map[string]domain.ParkingSpot, len(merged))
	for _, s := range merged {
		byID[s.ID] = s
	}

	winner, ok := byID["lot-1"]
	require.True(t, ok)
	assert.Equal(t, domain.SourceInventory, winner.Source)
	assert.Equal(t, 12, winner.AvailableSpaces)
	assert.Equal(t, "Parqueadero Central", winner.Name)
	assert.Contains(t, byID, "ext-abc-1")
}

func TestMergeSpots_EqualDistanceInventoryFirst(t *testing.T) {
	o := newBareOrchestrator()
	center := domain.Point{Lat: 4.711, Lng: -74.0721}
	o.lastSearchCenter = &center

	// Обе парковки ровно в центре поиска: дистанции равны
	o.inventorySpots = []domain.ParkingSpot{{
		ID: "lot-1", Location: center, Source: domain.SourceInventory,
	}}
	o.externalSpots = []domain.ParkingSpot{{
		ID: "ext-abc-1", Location: center, Source: domain.SourceExternal,
	}}

	merged := o.mergeSpots()

	require.Len(t, merged, 2)
	assert.Equal(t, "lot-1", merged[0].ID)
	assert.Equal(t, "ext-abc-1", merged[1].ID)
}

func TestHandleSearchResult_StaleCompletionDiscarded(t *testing.T) {
	o := newBareOrchestrator()
	center := domain.Point{Lat: 4.711, Lng: -74.0721}
	o.lastSearchCenter = &center

	o.externalSpots = []domain.ParkingSpot{{
		ID: "ext-current-2", Location: center, Source: domain.SourceExternal,
	}}
	o.publish()
	before := o.Snapshot()

	// Пока результат seq=1 летел, уже стартовал поиск seq=2
	o.seq = 2
	o.querying = true
	o.searching = true

	o.handleSearchResult(context.Background(), searchResult{
		seq:    1,
		center: domain.Point{Lat: 10, Lng: 10},
		spots: []domain.ParkingSpot{{
			ID: "ext-stale-1", Location: domain.Point{Lat: 10, Lng: 10},
		}},
	})

	assert.False(t, o.querying)
	assert.False(t, o.searching)

	// Устаревший набор не попал ни во внутреннее состояние, ни в снапшот
	require.Len(t, o.externalSpots, 1)
	assert.Equal(t, "ext-current-2", o.externalSpots[0].ID)

	after := o.Snapshot()
	assert.Equal(t, before.Spots, after.Spots)
}
