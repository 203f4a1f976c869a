package utils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parkiusource/parking-radar/internal/pkg/utils"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		dist := utils.HaversineDistance(4.711, -74.0721, 4.711, -74.0721)
		assert.Equal(t, 0.0, dist)
	})

	t.Run("known distance between city centers", func(t *testing.T) {
		// Богота - Медельин, ~245 км по прямой
		dist := utils.HaversineDistance(4.711, -74.0721, 6.2442, -75.5812)
		assert.InDelta(t, 245000, dist, 5000)
	})

	t.Run("short distance is meter-accurate", func(t *testing.T) {
		// Сдвиг на 0.001 широты - примерно 111 м
		dist := utils.HaversineDistance(4.711, -74.0721, 4.712, -74.0721)
		assert.InDelta(t, 111, dist, 1)
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := utils.HaversineDistance(4.711, -74.0721, 6.2442, -75.5812)
		d2 := utils.HaversineDistance(6.2442, -75.5812, 4.711, -74.0721)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("non-finite input yields infinity", func(t *testing.T) {
		assert.True(t, math.IsInf(utils.HaversineDistance(math.NaN(), 0, 0, 0), 1))
		assert.True(t, math.IsInf(utils.HaversineDistance(0, 0, math.Inf(1), 0), 1))
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, utils.ValidateCoordinates(4.711, -74.0721))
	assert.True(t, utils.ValidateCoordinates(-90, 180))
	assert.True(t, utils.ValidateCoordinates(0, 0))

	assert.False(t, utils.ValidateCoordinates(90.1, 0))
	assert.False(t, utils.ValidateCoordinates(0, -180.1))
	assert.False(t, utils.ValidateCoordinates(math.NaN(), 0))
	assert.False(t, utils.ValidateCoordinates(0, math.Inf(-1)))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", utils.FormatDistance(0.2))
	assert.Equal(t, "837 m", utils.FormatDistance(836.6))
	assert.Equal(t, "1.0 km", utils.FormatDistance(1000))
	assert.Equal(t, "2.4 km", utils.FormatDistance(2360))
	assert.Equal(t, "unknown", utils.FormatDistance(-1))
	assert.Equal(t, "unknown", utils.FormatDistance(math.NaN()))
}
