package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/repository/cache"
)

func newTestSpotCache(t *testing.T, mobile bool) (*cache.SpotCache, *fakeClock) {
	t.Helper()

	cfg := &config.CacheConfig{
		MobileThresholdMeters:  50,
		MobileExpiry:           2 * time.Minute,
		DesktopThresholdMeters: 150,
		DesktopExpiry:          5 * time.Minute,
		MobileProfile:          mobile,
		CleanupInterval:        time.Minute,
		SnapshotTTL:            6 * time.Minute,
	}

	clock := &fakeClock{t: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	c := cache.NewSpotCache(cfg, nil, zap.NewNop())
	c.SetClock(clock.Now)

	return c, clock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestSpotCache_GetSet(t *testing.T) {
	center := domain.Point{Lat: 4.711, Lng: -74.0721}
	spots := []domain.ParkingSpot{
		{ID: "lot-1", Location: center, Source: domain.SourceInventory},
		{ID: "ext-abc", Location: domain.Point{Lat: 4.7115, Lng: -74.072}, Source: domain.SourceExternal},
	}

	t.Run("miss on empty cache", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		assert.Nil(t, c.Get(center))
	})

	t.Run("exact round trip", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		c.Set(center, spots)

		entry := c.Get(center)
		require.NotNil(t, entry)
		assert.Len(t, entry.Spots, 2)
		assert.Equal(t, "lot-1", entry.Spots[0].ID)
	})

	t.Run("nearby center within threshold hits", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		c.Set(center, spots)

		// ~110 м севернее, порог desktop-профиля 150 м
		near := domain.Point{Lat: 4.712, Lng: -74.0721}
		assert.NotNil(t, c.Get(near))
	})

	t.Run("center beyond threshold misses", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		c.Set(center, spots)

		// ~330 м севернее
		far := domain.Point{Lat: 4.714, Lng: -74.0721}
		assert.Nil(t, c.Get(far))
	})

	t.Run("mobile profile uses tighter threshold", func(t *testing.T) {
		c, _ := newTestSpotCache(t, true)
		c.Set(center, spots)

		// ~110 м: попадание на desktop, промах на mobile (порог 50 м)
		near := domain.Point{Lat: 4.712, Lng: -74.0721}
		assert.Nil(t, c.Get(near))
	})

	t.Run("nearest of several entries wins", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		other := domain.Point{Lat: 4.7118, Lng: -74.0721}
		c.Set(center, spots)
		c.Set(other, []domain.ParkingSpot{{ID: "ext-other", Location: other}})

		entry := c.Get(domain.Point{Lat: 4.7119, Lng: -74.0721})
		require.NotNil(t, entry)
		assert.Equal(t, "ext-other", entry.Spots[0].ID)
	})

	t.Run("invalid coordinates neither store nor match", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		c.Set(domain.Point{Lat: 200, Lng: 0}, spots)
		assert.Equal(t, 0, c.Len())
		assert.Nil(t, c.Get(domain.Point{Lat: 200, Lng: 0}))
	})

	t.Run("returned entry is a copy", func(t *testing.T) {
		c, _ := newTestSpotCache(t, false)
		c.Set(center, spots)

		entry := c.Get(center)
		require.NotNil(t, entry)
		entry.Spots[0].Distance = 9999

		again := c.Get(center)
		assert.Equal(t, 0.0, again.Spots[0].Distance)
	})
}

func TestSpotCache_Expiry(t *testing.T) {
	center := domain.Point{Lat: 4.711, Lng: -74.0721}
	spots := []domain.ParkingSpot{{ID: "lot-1", Location: center}}

	t.Run("entry expires after profile TTL", func(t *testing.T) {
		c, clock := newTestSpotCache(t, false)
		c.Set(center, spots)

		clock.Advance(5*time.Minute - time.Second)
		assert.NotNil(t, c.Get(center))

		clock.Advance(2 * time.Second)
		assert.Nil(t, c.Get(center))
	})

	t.Run("access does not extend lifetime", func(t *testing.T) {
		c, clock := newTestSpotCache(t, false)
		c.Set(center, spots)

		clock.Advance(4 * time.Minute)
		require.NotNil(t, c.Get(center))

		clock.Advance(90 * time.Second)
		assert.Nil(t, c.Get(center))
	})

	t.Run("expired entries are swept on later writes", func(t *testing.T) {
		c, clock := newTestSpotCache(t, false)
		c.Set(center, spots)
		assert.Equal(t, 1, c.Len())

		clock.Advance(10 * time.Minute)
		other := domain.Point{Lat: 5.0, Lng: -75.0}
		c.Set(other, spots)

		assert.Equal(t, 1, c.Len())
	})
}

func TestSpotCache_InvalidateAll(t *testing.T) {
	c, _ := newTestSpotCache(t, false)
	center := domain.Point{Lat: 4.711, Lng: -74.0721}
	c.Set(center, []domain.ParkingSpot{{ID: "lot-1", Location: center}})

	c.InvalidateAll()

	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Get(center))
}
