package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"github.com/parkiusource/parking-radar/internal/pkg/metrics"
	"github.com/parkiusource/parking-radar/internal/pkg/utils"
	"github.com/parkiusource/parking-radar/internal/worker"
)

// viewportEvent - событие "карта остановилась" либо явный locate-жест
type viewportEvent struct {
	center domain.Point
	zoom   int
	locate bool
}

// searchResult - завершение external-запроса; seq отсекает устаревшие
type searchResult struct {
	seq    uint64
	center domain.Point
	spots  []domain.ParkingSpot
	err    error
}

// SearchOrchestrator - центральный координатор поиска. Наблюдает за
// перемещениями вьюпорта, решает, оправдан ли новый поиск (интервал,
// порог сдвига, кеш, квоты), выполняет запрос, нормализует и мержит
// результаты двух источников и публикует итоговый список.
//
// Вся логика решений живёт в одной event-loop горутине: состояние машины
// (Idle/Querying) - явные поля цикла, никакой гонки по флагам. Сам
// HTTP-запрос выполняется в дочерней горутине, но в полёте может быть
// не больше одного.
type SearchOrchestrator struct {
	*worker.BaseWorker

	places    repository.PlacesRepository
	inventory repository.InventoryRepository
	spotCache repository.SpotCacheRepository
	limiter   *RateLimiter

	minInterval   time.Duration
	moveThreshold float64
	queryTimeout  time.Duration
	defaultCenter domain.Point
	keyword       string

	events      chan viewportEvent
	inventoryCh chan []domain.ParkingSpot
	results     chan searchResult

	// Поля ниже принадлежат event-loop горутине
	querying         bool
	pending          *viewportEvent
	seq              uint64
	lastSearchAt     time.Time
	lastSearchCenter *domain.Point
	externalSpots    []domain.ParkingSpot
	inventorySpots   []domain.ParkingSpot
	searching        bool

	mu       sync.RWMutex
	snapshot domain.SearchSnapshot

	now func() time.Time
}

// NewSearchOrchestrator создает новый SearchOrchestrator
func NewSearchOrchestrator(
	places repository.PlacesRepository,
	inventory repository.InventoryRepository,
	spotCache repository.SpotCacheRepository,
	limiter *RateLimiter,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *SearchOrchestrator {
	return &SearchOrchestrator{
		BaseWorker:    worker.NewBaseWorker("search-orchestrator", logger),
		places:        places,
		inventory:     inventory,
		spotCache:     spotCache,
		limiter:       limiter,
		minInterval:   cfg.MinInterval,
		moveThreshold: cfg.MoveThresholdMeters,
		queryTimeout:  cfg.RequestTimeout,
		defaultCenter: domain.Point{Lat: cfg.DefaultCenterLat, Lng: cfg.DefaultCenterLng},
		keyword:       cfg.Keyword,
		events:        make(chan viewportEvent, 16),
		inventoryCh:   make(chan []domain.ParkingSpot, 1),
		results:       make(chan searchResult, 1),
		now:           time.Now,
	}
}

// Start запускает event-loop. Реализует worker.Worker.
func (o *SearchOrchestrator) Start(ctx context.Context) error {
	logger := o.Logger()
	logger.Info("Starting search orchestrator")

	// Первичная загрузка inventory; ошибки не фатальны - появится при
	// первом уведомлении push-канала
	if err := o.RefreshInventory(ctx); err != nil {
		logger.Warn("Initial inventory load failed", zap.Error(err))
	}

	for {
		select {
		case <-o.StopChan():
			logger.Info("Search orchestrator stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Search orchestrator context cancelled")
			return ctx.Err()

		case ev := <-o.events:
			o.handleViewportEvent(ctx, ev, false)

		case spots := <-o.inventoryCh:
			o.inventorySpots = spots
			o.publish()

		case res := <-o.results:
			o.handleSearchResult(ctx, res)
		}
	}
}

// OnViewportSettled принимает событие остановки карты. Неблокирующий:
// при переполненной очереди событие отбрасывается - следующий settle
// всё равно принесёт актуальный центр.
func (o *SearchOrchestrator) OnViewportSettled(center domain.Point, zoom int) {
	select {
	case o.events <- viewportEvent{center: center, zoom: zoom}:
	default:
		o.Logger().Debug("Viewport event dropped: queue full")
	}
}

// OnLocate принимает явный locate-жест пользователя. Явное намерение
// обходит подавление незначительного сдвига, но не интервал и не квоты.
func (o *SearchOrchestrator) OnLocate(center domain.Point, zoom int) {
	select {
	case o.events <- viewportEvent{center: center, zoom: zoom, locate: true}:
	default:
		o.Logger().Debug("Locate event dropped: queue full")
	}
}

// RefreshInventory перезагружает inventory-парковки. Вызывается при
// старте и на каждое уведомление push-канала; кеш и rate limiter не
// участвуют - это первоисточник, а не квотируемый внешний API.
func (o *SearchOrchestrator) RefreshInventory(ctx context.Context) error {
	lots, err := o.inventory.FetchParkingLots(ctx)
	if err != nil {
		o.Logger().Warn("Inventory fetch failed", zap.Error(err))
		return fmt.Errorf("fetch inventory: %w", err)
	}
	metrics.InventoryFetchesTotal.Inc()

	spots := make([]domain.ParkingSpot, 0, len(lots))
	for _, lot := range lots {
		if !utils.ValidateCoordinates(lot.Latitude, lot.Longitude) {
			o.Logger().Warn("Skipping inventory lot with invalid coordinates",
				zap.Int64("lot_id", lot.ID))
			continue
		}
		spots = append(spots, domain.ParkingSpot{
			ID:              fmt.Sprintf("lot-%d", lot.ID),
			Name:            lot.Name,
			Address:         lot.Address,
			Location:        domain.Point{Lat: lot.Latitude, Lng: lot.Longitude},
			Source:          domain.SourceInventory,
			AvailableSpaces: lot.AvailableSpaces,
			TotalSpaces:     lot.TotalSpaces,
			PricePerHour:    lot.PricePerHour,
			IsOpen:          lot.AvailableSpaces > 0,
		})
	}
	spots = DedupeSpots(spots)

	// Замещаем, не накапливаем: цикл всегда увидит последнее состояние
	for {
		select {
		case o.inventoryCh <- spots:
			return nil
		default:
			select {
			case <-o.inventoryCh:
			default:
			}
		}
	}
}

// SetConnected обновляет индикатор соединения push-канала
func (o *SearchOrchestrator) SetConnected(connected bool) {
	o.mu.Lock()
	o.snapshot.Connected = connected
	o.mu.Unlock()
}

// Snapshot возвращает последний опубликованный результат
func (o *SearchOrchestrator) Snapshot() domain.SearchSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := o.snapshot
	snap.Spots = append([]domain.ParkingSpot(nil), o.snapshot.Spots...)
	return snap
}

// InvalidateCache сбрасывает географический кеш (после админских изменений)
func (o *SearchOrchestrator) InvalidateCache() {
	o.spotCache.InvalidateAll()
}

// SetClock подменяет источник времени в тестах
func (o *SearchOrchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// handleViewportEvent - переходы Idle -> Debouncing -> CacheCheck ->
// RateCheck -> Querying. replayed выставляется для отложенного события,
// перепроверяемого после завершения запроса: оно уже отстояло свой
// интервал в очереди, второй раз гейт его не касается.
func (o *SearchOrchestrator) handleViewportEvent(ctx context.Context, ev viewportEvent, replayed bool) {
	logger := o.Logger()

	if o.querying {
		// Не теряем финальное положение вьюпорта: перепроверим после
		// завершения текущего запроса
		o.pending = &ev
		return
	}

	center := ev.center
	if !utils.ValidateCoordinates(center.Lat, center.Lng) {
		logger.Warn("Invalid viewport center, falling back to default",
			zap.Float64("lat", center.Lat),
			zap.Float64("lng", center.Lng))
		center = o.defaultCenter
	}

	now := o.now()
	if !replayed && !o.lastSearchAt.IsZero() && now.Sub(o.lastSearchAt) < o.minInterval {
		// Ранние settle отбрасываются, а не ставятся в очередь
		metrics.SearchesTotal.WithLabelValues("suppressed").Inc()
		logger.Debug("Search suppressed: minimum interval not elapsed")
		return
	}

	if !ev.locate && o.lastSearchCenter != nil {
		moved := utils.HaversineDistance(
			center.Lat, center.Lng,
			o.lastSearchCenter.Lat, o.lastSearchCenter.Lng)
		if moved < o.moveThreshold {
			metrics.SearchesTotal.WithLabelValues("suppressed").Inc()
			logger.Debug("Search suppressed: insignificant move",
				zap.Float64("moved_m", moved))
			return
		}
	}

	// CacheCheck: на попадании ни сети, ни rate limiter'а
	if entry := o.spotCache.Get(center); entry != nil {
		o.externalSpots = entry.Spots
		o.lastSearchCenter = &center
		o.lastSearchAt = now
		o.publish()
		metrics.SearchesTotal.WithLabelValues("cache_hit").Inc()
		logger.Debug("Search served from cache", zap.String("key", entry.Key))
		return
	}

	// RateCheck: отказ - не ошибка, деградируем молча
	if !o.limiter.CanMakeCall(ctx) {
		metrics.SearchesTotal.WithLabelValues("rate_limited").Inc()
		metrics.LimiterVetoesTotal.Inc()
		logger.Info("External search skipped: quota exhausted")
		return
	}

	query := domain.SearchQuery{
		Center:       center,
		Zoom:         ev.zoom,
		RadiusMeters: domain.RadiusForZoom(ev.zoom),
	}

	o.querying = true
	o.seq++
	o.lastSearchAt = now
	o.lastSearchCenter = &center
	o.searching = true
	o.publish()

	// Попытка расходует квоту независимо от исхода запроса
	o.limiter.LogCall(ctx, center)

	go o.executeSearch(ctx, o.seq, query)
}

// executeSearch выполняет external-запрос вне event-loop горутины
func (o *SearchOrchestrator) executeSearch(ctx context.Context, seq uint64, query domain.SearchQuery) {
	qctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()

	start := time.Now()
	places, err := o.places.SearchNearby(qctx, query.Center, query.RadiusMeters, o.keyword)
	metrics.PlacesRequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	res := searchResult{seq: seq, center: query.Center, err: err}
	if err == nil {
		res.spots = o.mapPlaces(places, query.Center)
	}

	select {
	case o.results <- res:
	case <-ctx.Done():
	}
}

// handleSearchResult - переходы Querying -> Merging -> Idle и обработка
// отложенного settle-события
func (o *SearchOrchestrator) handleSearchResult(ctx context.Context, res searchResult) {
	logger := o.Logger()
	o.querying = false
	o.searching = false

	switch {
	case res.seq != o.seq:
		// Устаревшее завершение: после него уже стартовал новый поиск
		logger.Debug("Discarding stale search result",
			zap.Uint64("result_seq", res.seq),
			zap.Uint64("current_seq", o.seq))

	case res.err != nil:
		// Сетевые ошибки external-провайдера гасятся на этой границе:
		// публикуем пустой external-набор, inventory остаётся видимым
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		logger.Warn("External search failed, publishing inventory only",
			zap.Error(res.err))
		o.externalSpots = nil
		o.publish()

	default:
		spots := DedupeSpots(res.spots)
		o.spotCache.Set(res.center, spots)
		o.externalSpots = spots
		o.publish()
		metrics.SearchesTotal.WithLabelValues("external").Inc()
		logger.Debug("External search completed",
			zap.Int("spots", len(spots)))
	}

	if o.pending != nil {
		ev := *o.pending
		o.pending = nil
		o.handleViewportEvent(ctx, ev, true)
	}
}

// mapPlaces нормализует сырые места провайдера в ParkingSpot.
// Синтетический id = provider id + отметка времени: уникален в пределах
// батча, нестабилен между батчами.
func (o *SearchOrchestrator) mapPlaces(places []domain.Place, center domain.Point) []domain.ParkingSpot {
	batch := o.now().UnixMilli()

	spots := make([]domain.ParkingSpot, 0, len(places))
	for _, p := range places {
		if !utils.ValidateCoordinates(p.Location.Lat, p.Location.Lng) {
			continue
		}
		spots = append(spots, domain.ParkingSpot{
			ID:              fmt.Sprintf("ext-%s-%d", p.ProviderID, batch),
			Name:            p.DisplayName,
			Address:         p.FormattedAddress,
			Location:        p.Location,
			Source:          domain.SourceExternal,
			IsOpen:          p.IsOperational(),
			Rating:          p.Rating,
			UserRatingCount: p.UserRatingCount,
			Distance: utils.HaversineDistance(
				center.Lat, center.Lng, p.Location.Lat, p.Location.Lng),
		})
	}

	return spots
}

// publish собирает объединённый список и выставляет его как снапшот
func (o *SearchOrchestrator) publish() {
	merged := o.mergeSpots()

	o.mu.Lock()
	o.snapshot.Spots = merged
	o.snapshot.Searching = o.searching
	o.snapshot.UpdatedAt = o.now()
	o.mu.Unlock()
}

// mergeSpots объединяет источники: inventory всегда выигрывает коллизию
// id - у него достоверная занятость. Сортировка по возрастанию дистанции
// от центра последнего поиска, при равенстве inventory первым.
func (o *SearchOrchestrator) mergeSpots() []domain.ParkingSpot {
	merged := make([]domain.ParkingSpot, 0, len(o.inventorySpots)+len(o.externalSpots))

	seen := make(map[string]struct{}, len(o.inventorySpots))
	for _, spot := range o.inventorySpots {
		seen[spot.ID] = struct{}{}
		merged = append(merged, spot)
	}
	for _, spot := range o.externalSpots {
		if _, ok := seen[spot.ID]; ok {
			continue
		}
		merged = append(merged, spot)
	}

	if o.lastSearchCenter != nil {
		center := *o.lastSearchCenter
		for i := range merged {
			merged[i].Distance = utils.HaversineDistance(
				center.Lat, center.Lng,
				merged[i].Location.Lat, merged[i].Location.Lng)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Distance != merged[j].Distance {
			return merged[i].Distance < merged[j].Distance
		}
		return merged[i].Source == domain.SourceInventory &&
			merged[j].Source != domain.SourceInventory
	})

	return merged
}
