package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"github.com/parkiusource/parking-radar/internal/pkg/errors"
	"github.com/parkiusource/parking-radar/internal/pkg/utils"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewPlacesClient создает новый клиент для Google Places API
func NewPlacesClient(cfg *config.PlacesConfig, logger *zap.Logger) repository.PlacesRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// SearchNearby ищет места рядом с центром в заданном радиусе
func (c *client) SearchNearby(
	ctx context.Context,
	center domain.Point,
	radiusMeters int,
	keyword string,
) ([]domain.Place, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %d", radiusMeters)
	}
	if !utils.ValidateCoordinates(center.Lat, center.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("type", "parking")
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	params.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/nearbysearch/json?%s", c.baseURL, params.Encode())

	c.logger.Debug("Calling Places Nearby Search API",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Int("radius_m", radiusMeters))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Places API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("places API error: status %d", resp.StatusCode)
	}

	var searchResp nearbySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// ZERO_RESULTS - валидный пустой ответ, не ошибка
	if searchResp.Status != "OK" && searchResp.Status != "ZERO_RESULTS" {
		c.logger.Error("Places API returned non-OK status",
			zap.String("status", searchResp.Status),
			zap.String("error_message", searchResp.ErrorMessage))
		return nil, fmt.Errorf("places API returned status: %s", searchResp.Status)
	}

	results := make([]domain.Place, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		address := r.Vicinity
		if address == "" {
			address = r.FormattedAddress
		}
		results = append(results, domain.Place{
			ProviderID:       r.PlaceID,
			DisplayName:      r.Name,
			FormattedAddress: address,
			Location: domain.Point{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			BusinessStatus:  r.BusinessStatus,
			Rating:          r.Rating,
			UserRatingCount: r.UserRatingsTotal,
		})
	}

	c.logger.Debug("Places Nearby Search completed",
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))

	return results, nil
}
