package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/pkg/errors"
	"github.com/parkiusource/parking-radar/internal/pkg/utils"
	"github.com/parkiusource/parking-radar/internal/pkg/validator"
	"github.com/parkiusource/parking-radar/internal/usecase"
	"github.com/parkiusource/parking-radar/internal/usecase/dto"
)

// ViewportHandler - обработчик событий карты и чтения результатов поиска
type ViewportHandler struct {
	orchestrator *usecase.SearchOrchestrator
	defaultZoom  int
	logger       *zap.Logger
}

// NewViewportHandler создает новый ViewportHandler
func NewViewportHandler(orchestrator *usecase.SearchOrchestrator, defaultZoom int, logger *zap.Logger) *ViewportHandler {
	return &ViewportHandler{
		orchestrator: orchestrator,
		defaultZoom:  defaultZoom,
		logger:       logger,
	}
}

// Settle godoc
// @Summary Остановка вьюпорта карты
// @Description Сообщает движку, что карта замерла на новом центре. Решение о поиске (кеш, квоты, порог сдвига) принимает оркестратор; ответ всегда 202 - результат появится в снапшоте.
// @Tags Viewport
// @Accept json
// @Produce json
// @Param request body dto.ViewportRequest true "Центр и зум вьюпорта"
// @Success 202 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/viewport [post]
func (h *ViewportHandler) Settle(c *fiber.Ctx) error {
	req, err := h.parseViewport(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	h.orchestrator.OnViewportSettled(domain.Point{Lat: req.Lat, Lng: req.Lng}, req.Zoom)

	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse{
		Data: fiber.Map{"accepted": true},
	})
}

// Locate godoc
// @Summary Явный locate-жест пользователя
// @Description То же, что settle, но явное намерение обходит подавление незначительного сдвига. Интервал и квоты действуют как обычно.
// @Tags Viewport
// @Accept json
// @Produce json
// @Param request body dto.ViewportRequest true "Позиция пользователя и зум"
// @Success 202 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/locate [post]
func (h *ViewportHandler) Locate(c *fiber.Ctx) error {
	req, err := h.parseViewport(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	h.orchestrator.OnLocate(domain.Point{Lat: req.Lat, Lng: req.Lng}, req.Zoom)

	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse{
		Data: fiber.Map{"accepted": true},
	})
}

// Snapshot godoc
// @Summary Текущий результат поиска
// @Description Возвращает последний опубликованный объединённый список парковок с флагами searching/connected.
// @Tags Viewport
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.SearchSnapshot}
// @Router /api/v1/spots [get]
func (h *ViewportHandler) Snapshot(c *fiber.Ctx) error {
	snap := h.orchestrator.Snapshot()

	return utils.SendSuccess(c, snap, &utils.Meta{
		Total: len(snap.Spots),
	})
}

func (h *ViewportHandler) parseViewport(c *fiber.Ctx) (*dto.ViewportRequest, error) {
	var req dto.ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.ErrInvalidRequest
	}

	// Единственное валидируемое поле - зум; координаты не отклоняются,
	// невалидный центр оркестратор заменяет на центр по умолчанию
	if err := validator.Validate(&req); err != nil {
		return nil, errors.ErrInvalidZoom.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		})
	}

	if req.Zoom == 0 {
		req.Zoom = h.defaultZoom
	}

	return &req, nil
}
