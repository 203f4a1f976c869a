package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"github.com/parkiusource/parking-radar/internal/pkg/metrics"
	"github.com/parkiusource/parking-radar/internal/pkg/utils"
	"go.uber.org/zap"
)

const persistTimeout = 2 * time.Second

// Profile - порог выборки и TTL записи. На мобильном профиле оба меньше:
// пользователь перемещается через более плотные поисковые контексты.
type Profile struct {
	ThresholdMeters float64
	Expiry          time.Duration
}

// SpotCache - кеш результатов external-поиска с выборкой по ближайшей
// записи. Записи живут в памяти; Redis-снапшот строго advisory - ошибки
// персистентности деградируют до in-memory и никогда не уходят наружу.
type SpotCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.CacheEntry
	profile     Profile
	cleanupEach time.Duration
	snapshotTTL time.Duration
	lastCleanup time.Time

	store  repository.CacheRepository // nil - без персистентности
	logger *zap.Logger
	now    func() time.Time
}

// NewSpotCache создаёт кеш, восстанавливая живые записи из снапшота
func NewSpotCache(cfg *config.CacheConfig, store repository.CacheRepository, logger *zap.Logger) *SpotCache {
	profile := Profile{
		ThresholdMeters: cfg.DesktopThresholdMeters,
		Expiry:          cfg.DesktopExpiry,
	}
	if cfg.MobileProfile {
		profile = Profile{
			ThresholdMeters: cfg.MobileThresholdMeters,
			Expiry:          cfg.MobileExpiry,
		}
	}

	c := &SpotCache{
		entries:     make(map[string]*domain.CacheEntry),
		profile:     profile,
		cleanupEach: cfg.CleanupInterval,
		snapshotTTL: cfg.SnapshotTTL,
		store:       store,
		logger:      logger,
		now:         time.Now,
	}
	c.lastCleanup = c.now()
	c.restore()

	return c
}

// Get возвращает ближайшую живую запись в пределах порога или nil.
// Побочный эффект: обновляет LastAccessed у найденной записи.
func (c *SpotCache) Get(center domain.Point) *domain.CacheEntry {
	if !utils.ValidateCoordinates(center.Lat, center.Lng) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var best *domain.CacheEntry
	bestDist := c.profile.ThresholdMeters

	for _, entry := range c.entries {
		if now.Sub(entry.Timestamp) >= c.profile.Expiry {
			continue
		}
		dist := utils.HaversineDistance(center.Lat, center.Lng, entry.Location.Lat, entry.Location.Lng)
		if dist < bestDist {
			best = entry
			bestDist = dist
		}
	}

	if best == nil {
		metrics.CacheMissesTotal.Inc()
		return nil
	}

	best.LastAccessed = now
	metrics.CacheHitsTotal.Inc()
	c.logger.Debug("Spot cache hit",
		zap.String("key", best.Key),
		zap.Float64("distance_m", bestDist))

	// Отдаём копию: вызывающий пересчитывает дистанции и не должен
	// трогать закешированные элементы
	return copyEntry(best)
}

// Set сохраняет результат поиска под округлённым ключом центра.
// Запускает уборку протухших записей, если с прошлой прошло достаточно
// времени - чтобы не платить за полный проход на каждой записи.
func (c *SpotCache) Set(center domain.Point, spots []domain.ParkingSpot) {
	if !utils.ValidateCoordinates(center.Lat, center.Lng) {
		return
	}

	c.mu.Lock()

	now := c.now()
	key := spotKey(center)
	c.entries[key] = &domain.CacheEntry{
		Key:          key,
		Location:     center,
		Spots:        append([]domain.ParkingSpot(nil), spots...),
		Timestamp:    now,
		LastAccessed: now,
	}

	if now.Sub(c.lastCleanup) >= c.cleanupEach {
		c.cleanupLocked(now)
		c.lastCleanup = now
	}

	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(snapshot)
}

// InvalidateAll сбрасывает все записи
func (c *SpotCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*domain.CacheEntry)
	c.mu.Unlock()

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.store.Delete(ctx, keySpotEntries); err != nil {
			c.logger.Debug("Failed to drop spot cache snapshot", zap.Error(err))
		}
	}

	c.logger.Info("Spot cache invalidated")
}

// Len возвращает число живых записей (для health/отладки)
func (c *SpotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetClock подменяет источник времени в тестах
func (c *SpotCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *SpotCache) cleanupLocked(now time.Time) {
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.Timestamp) >= c.profile.Expiry {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Spot cache cleanup", zap.Int("removed", removed))
	}
}

func (c *SpotCache) snapshotLocked() []domain.CacheEntry {
	snapshot := make([]domain.CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		snapshot = append(snapshot, *copyEntry(entry))
	}
	return snapshot
}

// persist сохраняет снапшот best-effort: кеш advisory, ошибка хранилища
// не должна дойти до оркестратора
func (c *SpotCache) persist(snapshot []domain.CacheEntry) {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.store.SetSpotEntries(ctx, snapshot, c.snapshotTTL); err != nil {
		c.logger.Debug("Failed to persist spot cache snapshot", zap.Error(err))
	}
}

// restore загружает живые записи из снапшота при старте
func (c *SpotCache) restore() {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	entries, err := c.store.GetSpotEntries(ctx)
	if err != nil || entries == nil {
		return
	}

	now := c.now()
	restored := 0
	for i := range entries {
		if now.Sub(entries[i].Timestamp) >= c.profile.Expiry {
			continue
		}
		entry := entries[i]
		c.entries[entry.Key] = &entry
		restored++
	}

	if restored > 0 {
		c.logger.Info("Spot cache restored from snapshot", zap.Int("entries", restored))
	}
}

// spotKey - ключ из координаты, округлённой до 4 знаков (~11 м по широте)
func spotKey(p domain.Point) string {
	return fmt.Sprintf("%.4f:%.4f", p.Lat, p.Lng)
}

func copyEntry(e *domain.CacheEntry) *domain.CacheEntry {
	cp := *e
	cp.Spots = append([]domain.ParkingSpot(nil), e.Spots...)
	return &cp
}
