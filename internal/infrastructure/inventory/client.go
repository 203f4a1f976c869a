package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewInventoryClient создает новый клиент inventory-бэкенда
func NewInventoryClient(cfg *config.InventoryConfig, logger *zap.Logger) repository.InventoryRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// FetchParkingLots загружает полный список собственных парковок
func (c *client) FetchParkingLots(ctx context.Context) ([]domain.ParkingLot, error) {
	reqURL := fmt.Sprintf("%s/parking-lots", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Inventory API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("inventory API error: status %d", resp.StatusCode)
	}

	var lots []domain.ParkingLot
	if err := json.NewDecoder(resp.Body).Decode(&lots); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("Inventory fetch completed", zap.Int("lots", len(lots)))

	return lots, nil
}
