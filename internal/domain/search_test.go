package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parkiusource/parking-radar/internal/domain"
)

func TestRadiusForZoom(t *testing.T) {
	t.Run("steps shrink as the map zooms in", func(t *testing.T) {
		assert.Equal(t, 300, domain.RadiusForZoom(18))
		assert.Equal(t, 300, domain.RadiusForZoom(17))
		assert.Equal(t, 600, domain.RadiusForZoom(16))
		assert.Equal(t, 1500, domain.RadiusForZoom(15))
		assert.Equal(t, 2000, domain.RadiusForZoom(14))
		assert.Equal(t, 2000, domain.RadiusForZoom(13))
		assert.Equal(t, 2500, domain.RadiusForZoom(12))
		assert.Equal(t, 2500, domain.RadiusForZoom(1))
	})

	t.Run("monotonic: lower zoom never yields a smaller radius", func(t *testing.T) {
		for zoom := 22; zoom > 1; zoom-- {
			assert.GreaterOrEqual(t,
				domain.RadiusForZoom(zoom-1), domain.RadiusForZoom(zoom))
		}
	})
}
