package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola outbox sobre PostgreSQL.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

const outboxColumns = `id, event_type, aggregate_id, payload, status, retry_count, max_retries, scheduled_at,
	error_message, processed_at, claimed_at, created_at, updated_at`

func scanOutboxEvent(row interface{ Scan(dest ...any) error }) (*entity.OutboxEvent, error) {
	var e entity.OutboxEvent
	var payload []byte
	if err := row.Scan(&e.ID, &e.EventType, &e.AggregateID, &payload, &e.Status, &e.RetryCount, &e.MaxRetries,
		&e.ScheduledAt, &e.ErrorMessage, &e.ProcessedAt, &e.ClaimedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Payload = payload
	return &e, nil
}

func (r *OutboxRepo) list(ctx context.Context, query string, args ...any) ([]*entity.OutboxEvent, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox events: %w", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEvent
	for rows.Next() {
		e, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Create inserta el evento; se llama con la tx del cambio de negocio.
func (r *OutboxRepo) Create(ctx context.Context, e *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (event_type, aggregate_id, payload, status, retry_count, max_retries,
			scheduled_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	err := r.q.QueryRow(ctx, query, e.EventType, e.AggregateID, payload, e.Status, e.RetryCount, e.MaxRetries,
		e.ScheduledAt, e.ErrorMessage, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// GetByID nil, nil si no existe.
func (r *OutboxRepo) GetByID(ctx context.Context, id int64) (*entity.OutboxEvent, error) {
	e, err := scanOutboxEvent(r.q.QueryRow(ctx, `SELECT `+outboxColumns+` FROM outbox_events WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbox event: %w", err)
	}
	return e, nil
}

// FetchDue PENDING con scheduled_at <= now, el más antiguo primero.
func (r *OutboxRepo) FetchDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+` FROM outbox_events
		WHERE status = 'PENDING' AND scheduled_at <= $1
		ORDER BY scheduled_at, id
		LIMIT $2`, now, limit)
}

// Claim PENDING -> PROCESSING solo si sigue PENDING; false si otro poller se adelantó.
func (r *OutboxRepo) Claim(ctx context.Context, e *entity.OutboxEvent) (bool, error) {
	query := `
		UPDATE outbox_events SET status = $2, claimed_at = $3, updated_at = $4
		WHERE id = $1 AND status = 'PENDING'`
	tag, err := r.q.Exec(ctx, query, e.ID, e.Status, e.ClaimedAt, e.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("claim outbox event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Save persiste la máquina de estados completa del evento.
func (r *OutboxRepo) Save(ctx context.Context, e *entity.OutboxEvent) error {
	query := `
		UPDATE outbox_events
		SET status = $2, retry_count = $3, scheduled_at = $4, error_message = $5,
		    processed_at = $6, claimed_at = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, e.ID, e.Status, e.RetryCount, e.ScheduledAt, e.ErrorMessage,
		e.ProcessedAt, e.ClaimedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save outbox event: %w", err)
	}
	return nil
}

// ReclaimStale devuelve a PENDING los PROCESSING reclamados antes de claimedBefore.
func (r *OutboxRepo) ReclaimStale(ctx context.Context, claimedBefore, now time.Time) (int64, error) {
	query := `
		UPDATE outbox_events
		SET status = 'PENDING', claimed_at = NULL, scheduled_at = $2, updated_at = $2
		WHERE status = 'PROCESSING' AND claimed_at < $1`
	tag, err := r.q.Exec(ctx, query, claimedBefore, now)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale outbox events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByStatus eventos en el estado dado, el más reciente primero.
func (r *OutboxRepo) ListByStatus(ctx context.Context, status string, limit int) ([]*entity.OutboxEvent, error) {
	return r.list(ctx, `
		SELECT `+outboxColumns+` FROM outbox_events
		WHERE status = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT $2`, status, limit)
}
