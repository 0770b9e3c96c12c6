package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// OutboxRepository cola persistente de efectos.
type OutboxRepository interface {
	// Create se llama dentro de la transacción del cambio de negocio.
	Create(ctx context.Context, ev *entity.OutboxEvent) error
	GetByID(ctx context.Context, id int64) (*entity.OutboxEvent, error)
	// FetchDue eventos PENDING con ScheduledAt <= now, el más antiguo primero.
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error)
	// Claim PENDING -> PROCESSING condicional; false si otro proceso ya lo tomó.
	Claim(ctx context.Context, ev *entity.OutboxEvent) (bool, error)
	// Save persiste estado, reintentos, programación, error y procesado.
	Save(ctx context.Context, ev *entity.OutboxEvent) error
	// ReclaimStale devuelve a PENDING los PROCESSING tomados antes de claimedBefore.
	ReclaimStale(ctx context.Context, claimedBefore, now time.Time) (int64, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*entity.OutboxEvent, error)
}
