package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// AdminService vista operativa de la cola: listar por estado y reencolar muertos.
type AdminService struct {
	repo repository.OutboxRepository
	now  func() time.Time
}

// NewAdminService construye el servicio.
func NewAdminService(repo repository.OutboxRepository, now func() time.Time) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{repo: repo, now: now}
}

// List eventos en el estado dado (DEAD si vacío).
func (s *AdminService) List(ctx context.Context, status string, limit int) ([]*entity.OutboxEvent, error) {
	if status == "" {
		status = entity.OutboxStatusDead
	}
	switch status {
	case entity.OutboxStatusPending, entity.OutboxStatusProcessing, entity.OutboxStatusProcessed, entity.OutboxStatusDead:
	default:
		return nil, domain.Invalid("estado de outbox desconocido: %s", status)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListByStatus(ctx, status, limit)
}

// Requeue DEAD -> PENDING con reintentos en cero.
func (s *AdminService) Requeue(ctx context.Context, id int64) (*entity.OutboxEvent, error) {
	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: evento outbox %d", domain.ErrNotFound, id)
	}
	if ev.Status != entity.OutboxStatusDead {
		return nil, fmt.Errorf("%w: el evento %d está en %s, solo se reencolan eventos DEAD", domain.ErrConflict, id, ev.Status)
	}
	ev.Requeue(s.now())
	if err := s.repo.Save(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
