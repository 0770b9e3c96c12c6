package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// Publisher escribe eventos PENDING en la transacción del cambio de negocio.
// Nunca abre su propia transacción: si la transacción del llamador se revierte, el evento desaparece con ella.
type Publisher struct {
	maxRetries int
	now        func() time.Time
}

// NewPublisher maxRetries <= 0 usa entity.DefaultOutboxMaxRetries.
func NewPublisher(maxRetries int, now func() time.Time) *Publisher {
	if maxRetries <= 0 {
		maxRetries = entity.DefaultOutboxMaxRetries
	}
	if now == nil {
		now = time.Now
	}
	return &Publisher{maxRetries: maxRetries, now: now}
}

// Publish serializa payload a JSON y crea el evento con repos (los de la tx en curso).
func (p *Publisher) Publish(ctx context.Context, repos repository.Repositories, eventType, aggregateID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload %s: %w", eventType, err)
	}
	ev := entity.NewOutboxEvent(eventType, aggregateID, raw, p.maxRetries, p.now())
	if err := repos.Outbox().Create(ctx, ev); err != nil {
		return fmt.Errorf("create outbox event %s: %w", eventType, err)
	}
	return nil
}
