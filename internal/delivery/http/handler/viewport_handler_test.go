package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/delivery/http/handler"
	"github.com/parkiusource/parking-radar/internal/usecase"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	// Оркестратор не запущен: обработчики только кладут события в очередь
	// и читают снапшот, event-loop им не нужен
	orchestrator := usecase.NewSearchOrchestrator(nil, nil, nil, nil, &config.SearchConfig{
		MinInterval:         2 * time.Second,
		MoveThresholdMeters: 30,
		RequestTimeout:      10 * time.Second,
		DefaultCenterLat:    4.711,
		DefaultCenterLng:    -74.0721,
		DefaultZoom:         15,
		Keyword:             "parking",
	}, logger)

	h := handler.NewViewportHandler(orchestrator, 15, logger)

	app := fiber.New()
	app.Post("/api/v1/viewport", h.Settle)
	app.Post("/api/v1/locate", h.Locate)
	app.Get("/api/v1/spots", h.Snapshot)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestViewportHandler_Settle(t *testing.T) {
	t.Run("valid settle accepted", func(t *testing.T) {
		app := newTestApp(t)

		resp := postJSON(t, app, "/api/v1/viewport", map[string]interface{}{
			"lat": 4.711, "lng": -74.0721, "zoom": 16,
		})

		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	})

	t.Run("out-of-range zoom rejected", func(t *testing.T) {
		app := newTestApp(t)

		resp := postJSON(t, app, "/api/v1/viewport", map[string]interface{}{
			"lat": 4.711, "lng": -74.0721, "zoom": 50,
		})

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_ZOOM", body.Error.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		app := newTestApp(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/viewport", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid coordinates still accepted", func(t *testing.T) {
		// Невалидный центр не отклоняется на границе API:
		// оркестратор подставит центр по умолчанию
		app := newTestApp(t)

		resp := postJSON(t, app, "/api/v1/viewport", map[string]interface{}{
			"lat": 999.0, "lng": 999.0, "zoom": 15,
		})

		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	})
}

func TestViewportHandler_Locate(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/locate", map[string]interface{}{
		"lat": 4.711, "lng": -74.0721,
	})

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestViewportHandler_Snapshot(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spots", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Spots     []interface{} `json:"spots"`
			Searching bool          `json:"searching"`
			Connected bool          `json:"connected"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Empty(t, body.Data.Spots)
	assert.False(t, body.Data.Searching)
	assert.False(t, body.Data.Connected)
}
