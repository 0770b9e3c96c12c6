package entity

import (
	"encoding/json"
	"time"
)

// AuditLog entrada de la bitácora de operaciones (se alimenta solo vía outbox).
type AuditLog struct {
	ID         string
	Operation  string
	Actor      string
	EntityType string
	EntityID   string
	Detail     json.RawMessage
	CreatedAt  time.Time
}
