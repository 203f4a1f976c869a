package domain

import "encoding/json"

// Типы сообщений push-канала (должны совпадать с backend_parking)
const (
	MessagePing          = "ping"
	MessageParkingChange = "new-change-in-parking"
	MessageAdminChange   = "admin-changed"
)

// ChangeEvent - входящее уведомление push-канала
type ChangeEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
