package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/usecase"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter(perMinute, perDay int) (*usecase.RateLimiter, *testClock) {
	clock := &testClock{t: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	l := usecase.NewRateLimiter(&config.LimiterConfig{
		PerMinute: perMinute,
		PerDay:    perDay,
	}, nil, zap.NewNop())
	l.SetClock(clock.Now)
	return l, clock
}

func TestRateLimiter_MinuteWindow(t *testing.T) {
	ctx := context.Background()
	center := domain.Point{Lat: 4.711, Lng: -74.0721}

	t.Run("allows up to the ceiling", func(t *testing.T) {
		l, _ := newTestLimiter(3, 100)

		for i := 0; i < 3; i++ {
			assert.True(t, l.CanMakeCall(ctx))
			l.LogCall(ctx, center)
		}

		assert.False(t, l.CanMakeCall(ctx))
	})

	t.Run("window slides open after a minute", func(t *testing.T) {
		l, clock := newTestLimiter(2, 100)

		l.LogCall(ctx, center)
		l.LogCall(ctx, center)
		assert.False(t, l.CanMakeCall(ctx))

		clock.Advance(time.Minute + time.Second)
		assert.True(t, l.CanMakeCall(ctx))

		recent, daily := l.Usage()
		assert.Equal(t, 0, recent)
		assert.Equal(t, 2, daily)
	})

	t.Run("same coordinate does not collapse into one call", func(t *testing.T) {
		l, _ := newTestLimiter(2, 100)

		l.LogCall(ctx, center)
		l.LogCall(ctx, center)

		recent, _ := l.Usage()
		assert.Equal(t, 2, recent)
	})
}

func TestRateLimiter_DailyWindow(t *testing.T) {
	ctx := context.Background()
	center := domain.Point{Lat: 4.711, Lng: -74.0721}

	t.Run("daily ceiling blocks even with free minute window", func(t *testing.T) {
		l, clock := newTestLimiter(10, 3)

		for i := 0; i < 3; i++ {
			l.LogCall(ctx, center)
			clock.Advance(2 * time.Minute)
		}

		recent, daily := l.Usage()
		assert.Equal(t, 0, recent)
		assert.Equal(t, 3, daily)
		assert.False(t, l.CanMakeCall(ctx))
	})

	t.Run("daily counter resets after a day", func(t *testing.T) {
		l, clock := newTestLimiter(10, 2)

		l.LogCall(ctx, center)
		l.LogCall(ctx, center)
		assert.False(t, l.CanMakeCall(ctx))

		clock.Advance(24*time.Hour + time.Minute)
		assert.True(t, l.CanMakeCall(ctx))

		_, daily := l.Usage()
		assert.Equal(t, 0, daily)
	})
}
