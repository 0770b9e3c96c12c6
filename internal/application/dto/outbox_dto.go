package dto

import (
	"encoding/json"
	"time"
)

// OutboxEventDTO vista operativa de un evento outbox.
type OutboxEventDTO struct {
	ID           int64           `json:"id"`
	EventType    string          `json:"event_type"`
	AggregateID  string          `json:"aggregate_id"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OutboxListResponse GET /api/admin/outbox.
type OutboxListResponse struct {
	Status string           `json:"status"`
	Total  int              `json:"total"`
	Events []OutboxEventDTO `json:"events"`
}
