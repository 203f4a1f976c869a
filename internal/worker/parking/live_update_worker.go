package parking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/infrastructure/push"
	"github.com/parkiusource/parking-radar/internal/pkg/metrics"
	"github.com/parkiusource/parking-radar/internal/usecase"
	"github.com/parkiusource/parking-radar/internal/worker"
)

// LiveUpdateWorker держит websocket-подписку на push-канал inventory-бэкенда.
// На уведомление об изменении парковки перезагружает inventory, на админское
// изменение дополнительно сбрасывает географический кеш. Соединение смертно:
// при любом обрыве воркер ждёт фиксированную паузу и подключается заново.
type LiveUpdateWorker struct {
	*worker.BaseWorker
	client         *push.Client
	orchestrator   *usecase.SearchOrchestrator
	reconnectDelay time.Duration
}

// NewLiveUpdateWorker создает новый LiveUpdateWorker
func NewLiveUpdateWorker(
	client *push.Client,
	orchestrator *usecase.SearchOrchestrator,
	reconnectDelay time.Duration,
	logger *zap.Logger,
) *LiveUpdateWorker {
	return &LiveUpdateWorker{
		BaseWorker:     worker.NewBaseWorker("live-update", logger),
		client:         client,
		orchestrator:   orchestrator,
		reconnectDelay: reconnectDelay,
	}
}

// Start запускает цикл подключения
func (w *LiveUpdateWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting live update worker",
		zap.Duration("reconnect_delay", w.reconnectDelay))

	for {
		select {
		case <-w.StopChan():
			logger.Info("Live update worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Live update worker context cancelled")
			return ctx.Err()
		default:
		}

		// Listen блокируется в чтении сокета и следит только за контекстом,
		// поэтому Stop() транслируется в отмену подчиненного контекста
		listenCtx, cancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-w.StopChan():
				cancel()
			case <-listenCtx.Done():
			}
		}()

		err := w.client.Listen(listenCtx,
			func() { w.orchestrator.SetConnected(true) },
			func(event domain.ChangeEvent) { w.handleEvent(listenCtx, event) },
		)
		cancel()
		w.orchestrator.SetConnected(false)

		if ctx.Err() != nil || w.IsStopped() {
			continue
		}

		logger.Warn("Push channel disconnected, reconnecting",
			zap.Error(err),
			zap.Duration("delay", w.reconnectDelay))
		metrics.PushReconnectsTotal.Inc()

		select {
		case <-time.After(w.reconnectDelay):
		case <-w.StopChan():
		case <-ctx.Done():
		}
	}
}

func (w *LiveUpdateWorker) handleEvent(ctx context.Context, event domain.ChangeEvent) {
	switch event.Type {
	case domain.MessageParkingChange:
		if err := w.orchestrator.RefreshInventory(ctx); err != nil {
			w.Logger().Warn("Inventory refresh after change failed", zap.Error(err))
		}

	case domain.MessageAdminChange:
		// Админские правки могут менять сами парковки, а не только
		// занятость: закешированные результаты больше не достоверны
		w.orchestrator.InvalidateCache()
		if err := w.orchestrator.RefreshInventory(ctx); err != nil {
			w.Logger().Warn("Inventory refresh after admin change failed", zap.Error(err))
		}

	default:
		w.Logger().Debug("Ignoring unknown push event", zap.String("type", event.Type))
	}
}
