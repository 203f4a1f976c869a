package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	shortWindow = time.Minute
	dailyWindow = 24 * time.Hour
)

// RateLimiter следит за квотами external-провайдера в двух окнах:
// скользящем минутном и суточном. Состояние переживает рестарт через
// CacheRepository; недоступность хранилища деградирует до in-memory.
type RateLimiter struct {
	mu           sync.Mutex
	recentCalls  map[string]time.Time
	dailyCount   int
	dailyResetAt time.Time

	perMinute int
	perDay    int

	store  repository.CacheRepository // nil - без персистентности
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter создаёт лимитер, восстанавливая состояние из хранилища
func NewRateLimiter(cfg *config.LimiterConfig, store repository.CacheRepository, logger *zap.Logger) *RateLimiter {
	l := &RateLimiter{
		recentCalls: make(map[string]time.Time),
		perMinute:   cfg.PerMinute,
		perDay:      cfg.PerDay,
		store:       store,
		logger:      logger,
		now:         time.Now,
	}
	l.dailyResetAt = l.now()
	l.restore()

	return l
}

// CanMakeCall выполняет уборку окон и отвечает, разрешён ли новый вызов.
// Отказ - не ошибка, а ожидаемый backpressure: поиск просто пропускается.
func (l *RateLimiter) CanMakeCall(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()

	if len(l.recentCalls) >= l.perMinute {
		l.logger.Debug("Rate limiter veto: minute window full",
			zap.Int("recent_calls", len(l.recentCalls)),
			zap.Int("per_minute", l.perMinute))
		return false
	}
	if l.dailyCount >= l.perDay {
		l.logger.Debug("Rate limiter veto: daily window full",
			zap.Int("daily_count", l.dailyCount),
			zap.Int("per_day", l.perDay))
		return false
	}

	return true
}

// LogCall регистрирует вызов. Вызывается на каждом диспатче запроса
// независимо от его исхода: попытка уже израсходовала квоту.
func (l *RateLimiter) LogCall(ctx context.Context, center domain.Point) {
	l.mu.Lock()

	now := l.now()
	id := callID(center, now)
	l.recentCalls[id] = now
	l.dailyCount++

	state := l.stateLocked()
	l.mu.Unlock()

	l.persist(ctx, state)
}

// Usage возвращает текущие счётчики (для health/отладки)
func (l *RateLimiter) Usage() (recent, daily int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupLocked()
	return len(l.recentCalls), l.dailyCount
}

// SetClock подменяет источник времени в тестах
func (l *RateLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

func (l *RateLimiter) cleanupLocked() {
	now := l.now()

	for id, ts := range l.recentCalls {
		if now.Sub(ts) >= shortWindow {
			delete(l.recentCalls, id)
		}
	}

	if now.Sub(l.dailyResetAt) >= dailyWindow {
		l.dailyCount = 0
		l.dailyResetAt = now
	}
}

func (l *RateLimiter) stateLocked() *domain.RateLimiterState {
	calls := make(map[string]time.Time, len(l.recentCalls))
	for id, ts := range l.recentCalls {
		calls[id] = ts
	}
	return &domain.RateLimiterState{
		RecentCalls:    calls,
		DailyCallCount: l.dailyCount,
		DailyResetAt:   l.dailyResetAt,
	}
}

// persist сохраняет состояние best-effort; хранилище advisory
func (l *RateLimiter) persist(ctx context.Context, state *domain.RateLimiterState) {
	if l.store == nil {
		return
	}
	if err := l.store.SetLimiterState(ctx, state); err != nil {
		l.logger.Debug("Failed to persist limiter state", zap.Error(err))
	}
}

func (l *RateLimiter) restore() {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	state, err := l.store.GetLimiterState(ctx)
	if err != nil || state == nil {
		return
	}

	if state.RecentCalls != nil {
		l.recentCalls = state.RecentCalls
	}
	l.dailyCount = state.DailyCallCount
	if !state.DailyResetAt.IsZero() {
		l.dailyResetAt = state.DailyResetAt
	}
	l.cleanupLocked()

	l.logger.Info("Rate limiter state restored",
		zap.Int("recent_calls", len(l.recentCalls)),
		zap.Int("daily_count", l.dailyCount))
}

// callID - синтетический идентификатор вызова: округлённая координата
// плюс отметка времени; uuid-суффикс защищает от коллизий в одну миллисекунду
func callID(center domain.Point, now time.Time) string {
	return fmt.Sprintf("%.4f:%.4f:%d:%s",
		center.Lat, center.Lng, now.UnixMilli(), uuid.NewString()[:8])
}
