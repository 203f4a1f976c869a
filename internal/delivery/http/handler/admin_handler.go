package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/pkg/utils"
	"github.com/parkiusource/parking-radar/internal/repository/cache"
	"github.com/parkiusource/parking-radar/internal/usecase"
	"github.com/parkiusource/parking-radar/internal/usecase/dto"
)

// AdminHandler - служебные операции: сброс кеша, квоты, health
type AdminHandler struct {
	orchestrator *usecase.SearchOrchestrator
	limiter      *usecase.RateLimiter
	limiterCfg   *config.LimiterConfig
	redis        *cache.Redis
	logger       *zap.Logger
}

// NewAdminHandler создает новый AdminHandler
func NewAdminHandler(
	orchestrator *usecase.SearchOrchestrator,
	limiter *usecase.RateLimiter,
	limiterCfg *config.LimiterConfig,
	redis *cache.Redis,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		orchestrator: orchestrator,
		limiter:      limiter,
		limiterCfg:   limiterCfg,
		redis:        redis,
		logger:       logger,
	}
}

// InvalidateCache godoc
// @Summary Сброс географического кеша
// @Description Удаляет все закешированные результаты external-поиска. Следующий settle пойдёт в сеть (в пределах квот).
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/cache/invalidate [post]
func (h *AdminHandler) InvalidateCache(c *fiber.Ctx) error {
	h.orchestrator.InvalidateCache()
	h.logger.Info("Spot cache invalidated via admin endpoint")

	return utils.SendSuccess(c, fiber.Map{"invalidated": true}, nil)
}

// LimiterUsage godoc
// @Summary Текущее потребление квот
// @Description Возвращает счётчики rate limiter'а external-провайдера.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.LimiterUsageResponse}
// @Router /api/v1/limiter [get]
func (h *AdminHandler) LimiterUsage(c *fiber.Ctx) error {
	recent, daily := h.limiter.Usage()

	return utils.SendSuccess(c, dto.LimiterUsageResponse{
		CallsLastMinute: recent,
		CallsToday:      daily,
		PerMinuteLimit:  h.limiterCfg.PerMinute,
		PerDayLimit:     h.limiterCfg.PerDay,
	}, nil)
}

// Health godoc
// @Summary Состояние сервиса
// @Description Живость процесса плюс состояние зависимостей. Redis опционален: его отказ деградирует персистентность, но не сервис.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/health [get]
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	snap := h.orchestrator.Snapshot()

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "healthy"
		if err := h.redis.Health(c.Context()); err != nil {
			redisStatus = "unhealthy"
		}
	}

	return utils.SendSuccess(c, fiber.Map{
		"status":         "healthy",
		"redis":          redisStatus,
		"push_connected": snap.Connected,
		"time":           time.Now(),
	}, nil)
}
