package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parkiusource/parking-radar/internal/config"
	"github.com/parkiusource/parking-radar/internal/domain"
)

// Client устанавливает websocket-соединение с push-каналом inventory-бэкенда
// и читает уведомления об изменениях. Переподключением владеет вызывающая
// сторона: Listen возвращается при первой же ошибке соединения.
type Client struct {
	url          string
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewClient создает новый push-клиент
func NewClient(cfg *config.PushConfig, logger *zap.Logger) *Client {
	return &Client{
		url:          cfg.URL,
		pingInterval: cfg.PingInterval,
		logger:       logger,
	}
}

// Listen подключается и читает уведомления до ошибки или отмены контекста.
// После успешного рукопожатия вызывается onConnect; на каждое
// декодированное уведомление - onEvent (в горутине чтения, обработчик
// должен быть быстрым). Пока соединение живо, каждые
// pingInterval отправляется ping-кадр, поддерживающий его открытым за
// прокси и балансировщиками.
func (c *Client) Listen(ctx context.Context, onConnect func(), onEvent func(domain.ChangeEvent)) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}
	defer conn.Close()

	c.logger.Info("Push channel connected", zap.String("url", c.url))
	if onConnect != nil {
		onConnect()
	}

	// Закрытие по отмене контекста выбивает блокирующий ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	go c.pingLoop(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read push message: %w", err)
		}

		var event domain.ChangeEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn("Skipping malformed push message", zap.Error(err))
			continue
		}

		if event.Type == domain.MessagePing {
			continue
		}

		c.logger.Debug("Push event received", zap.String("type", event.Type))
		onEvent(event)
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	ping, _ := json.Marshal(domain.ChangeEvent{Type: domain.MessagePing})

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				c.logger.Debug("Ping write failed", zap.Error(err))
				return
			}
		}
	}
}
