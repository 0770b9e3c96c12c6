package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// ReservationRepository almacén de reservas tentativas y comprometidas.
// Todas las consultas excluyen filas borradas; las de tentativas excluyen además las vencidas a now.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	Save(ctx context.Context, r *entity.Reservation) error

	// FindActiveTentative devuelve nil, nil si la sesión no tiene reserva activa del producto.
	FindActiveTentative(ctx context.Context, sessionID string, productID int64, now time.Time) (*entity.Reservation, error)
	ListActiveTentativeBySession(ctx context.Context, sessionID string, now time.Time) ([]*entity.Reservation, error)
	SumActiveTentative(ctx context.Context, productID int64, now time.Time) (int64, error)

	// FindCommitted devuelve nil, nil si el pedido no tiene reserva comprometida del producto.
	FindCommitted(ctx context.Context, orderID, productID int64) (*entity.Reservation, error)
	ListCommittedByOrder(ctx context.Context, orderID int64) ([]*entity.Reservation, error)

	// RevokeExpired borra lógicamente todas las tentativas vencidas; devuelve cuántas.
	RevokeExpired(ctx context.Context, now time.Time) (int64, error)
}
