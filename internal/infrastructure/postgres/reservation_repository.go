package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo reservas sobre PostgreSQL. Todas las consultas filtran deleted_at IS NULL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, session_id, order_id, product_id, quantity, reservation_type, expires_at, created_at, updated_at, deleted_at`

func scanReservation(row interface{ Scan(dest ...any) error }) (*entity.Reservation, error) {
	var (
		r       entity.Reservation
		orderID *int64
	)
	if err := row.Scan(&r.ID, &r.SessionID, &orderID, &r.ProductID, &r.Quantity, &r.Type,
		&r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt); err != nil {
		return nil, err
	}
	if orderID != nil {
		r.OrderID = *orderID
	}
	return &r, nil
}

func nullableOrderID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// Create inserta la reserva. Para tentativas borra antes la vencida sin barrer de la misma
// sesión y producto, que si no chocaría con el índice único parcial.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.Type == entity.ReservationTypeTentative {
		expire := `
			UPDATE reservations SET deleted_at = $3, updated_at = $3
			WHERE session_id = $1 AND product_id = $2
			  AND reservation_type = 'TENTATIVE' AND deleted_at IS NULL AND expires_at <= $3`
		if _, err := r.q.Exec(ctx, expire, res.SessionID, res.ProductID, res.CreatedAt); err != nil {
			return fmt.Errorf("expire previous reservation: %w", err)
		}
	}
	query := `
		INSERT INTO reservations (session_id, order_id, product_id, quantity, reservation_type, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		res.SessionID, nullableOrderID(res.OrderID), res.ProductID, res.Quantity, res.Type,
		res.ExpiresAt, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la sesión ya tiene una reserva activa del producto %d", domain.ErrConflict, res.ProductID)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// Save actualiza cantidad, vencimiento y borrado lógico.
func (r *ReservationRepo) Save(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET quantity = $2, expires_at = $3, updated_at = $4, deleted_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, res.ID, res.Quantity, res.ExpiresAt, res.UpdatedAt, res.DeletedAt)
	if err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reserva %d", domain.ErrNotFound, res.ID)
	}
	return nil
}

// FindActiveTentative tentativa viva de la sesión para el producto; nil, nil si no hay.
func (r *ReservationRepo) FindActiveTentative(ctx context.Context, sessionID string, productID int64, now time.Time) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE session_id = $1 AND product_id = $2
		  AND reservation_type = 'TENTATIVE' AND deleted_at IS NULL AND expires_at > $3`
	res, err := scanReservation(r.q.QueryRow(ctx, query, sessionID, productID, now))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tentative reservation: %w", err)
	}
	return res, nil
}

// ListActiveTentativeBySession tentativas vivas de la sesión.
func (r *ReservationRepo) ListActiveTentativeBySession(ctx context.Context, sessionID string, now time.Time) ([]*entity.Reservation, error) {
	return r.list(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE session_id = $1 AND reservation_type = 'TENTATIVE' AND deleted_at IS NULL AND expires_at > $2
		ORDER BY product_id`, sessionID, now)
}

// SumActiveTentative unidades retenidas por tentativas vivas del producto.
func (r *ReservationRepo) SumActiveTentative(ctx context.Context, productID int64, now time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM reservations
		WHERE product_id = $1 AND reservation_type = 'TENTATIVE' AND deleted_at IS NULL AND expires_at > $2`
	var sum int64
	if err := r.q.QueryRow(ctx, query, productID, now).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum tentative reservations: %w", err)
	}
	return sum, nil
}

// FindCommitted reserva comprometida del pedido para el producto; nil, nil si no hay.
func (r *ReservationRepo) FindCommitted(ctx context.Context, orderID, productID int64) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE order_id = $1 AND product_id = $2 AND reservation_type = 'COMMITTED' AND deleted_at IS NULL
		ORDER BY id LIMIT 1`
	res, err := scanReservation(r.q.QueryRow(ctx, query, orderID, productID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find committed reservation: %w", err)
	}
	return res, nil
}

// ListCommittedByOrder reservas comprometidas vivas del pedido.
func (r *ReservationRepo) ListCommittedByOrder(ctx context.Context, orderID int64) ([]*entity.Reservation, error) {
	return r.list(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE order_id = $1 AND reservation_type = 'COMMITTED' AND deleted_at IS NULL
		ORDER BY product_id, id`, orderID)
}

// RevokeExpired borra lógicamente las tentativas vencidas.
func (r *ReservationRepo) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE reservations SET deleted_at = $1, updated_at = $1
		WHERE reservation_type = 'TENTATIVE' AND deleted_at IS NULL AND expires_at <= $1`
	tag, err := r.q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("revoke expired reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}
