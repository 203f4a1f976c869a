package usecase_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/usecase"
)

func spot(id string, lat, lng float64) domain.ParkingSpot {
	return domain.ParkingSpot{
		ID:       id,
		Location: domain.Point{Lat: lat, Lng: lng},
	}
}

func TestDedupeSpots(t *testing.T) {
	t.Run("empty and single-element slices pass through", func(t *testing.T) {
		assert.Empty(t, usecase.DedupeSpots(nil))
		single := []domain.ParkingSpot{spot("a", 4.0, -74.0)}
		assert.Equal(t, single, usecase.DedupeSpots(single))
	})

	t.Run("removes duplicate by id", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("a", 4.0, -74.0),
			spot("b", 5.0, -75.0),
			spot("a", 6.0, -76.0),
		}

		result := usecase.DedupeSpots(spots)

		assert.Len(t, result, 2)
		assert.Equal(t, "a", result[0].ID)
		assert.Equal(t, "b", result[1].ID)
	})

	t.Run("removes near-coincident coordinates keeping first", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("a", 4.71100, -74.07210),
			spot("b", 4.71105, -74.07215), // в пределах допуска от a
			spot("c", 4.71200, -74.07210), // дальше допуска
		}

		result := usecase.DedupeSpots(spots)

		assert.Len(t, result, 2)
		assert.Equal(t, "a", result[0].ID)
		assert.Equal(t, "c", result[1].ID)
	})

	t.Run("close latitude but far longitude is not a duplicate", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("a", 4.711, -74.0721),
			spot("b", 4.711, -74.08),
		}

		assert.Len(t, usecase.DedupeSpots(spots), 2)
	})

	t.Run("preserves original order", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("c", 1.0, 1.0),
			spot("a", 2.0, 2.0),
			spot("c", 3.0, 3.0),
			spot("b", 4.0, 4.0),
		}

		result := usecase.DedupeSpots(spots)

		ids := []string{result[0].ID, result[1].ID, result[2].ID}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("idempotent: second pass changes nothing", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("a", 4.71100, -74.07210),
			spot("a", 4.71100, -74.07210),
			spot("b", 4.71105, -74.07215),
			spot("c", 4.71200, -74.07210),
			spot("d", 5.0, -75.0),
		}

		once := usecase.DedupeSpots(spots)
		twice := usecase.DedupeSpots(once)

		assert.Equal(t, once, twice)
	})

	t.Run("NaN coordinates never match each other", func(t *testing.T) {
		spots := []domain.ParkingSpot{
			spot("a", math.NaN(), math.NaN()),
			spot("b", math.NaN(), math.NaN()),
		}

		assert.Len(t, usecase.DedupeSpots(spots), 2)
	})
}
