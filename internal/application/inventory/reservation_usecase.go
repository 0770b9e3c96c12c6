package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ReservationUseCase administra reservas tentativas y comprometidas contra el libro de stock.
// Toda decisión que afecta cantidades se toma con la fila LocationStock bloqueada (SELECT FOR UPDATE);
// las lecturas para mostrar usan reads sin bloqueo.
type ReservationUseCase struct {
	txRunner  TxRunner
	reads     repository.Repositories
	publisher EventPublisher
	metrics   ports.Metrics
	log       zerolog.Logger
	cfg       Config
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(
	txRunner TxRunner,
	reads repository.Repositories,
	publisher EventPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
	cfg Config,
) *ReservationUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ReservationUseCase{
		txRunner:  txRunner,
		reads:     reads,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With().Str("component", "reservations").Logger(),
		cfg:       cfg.withDefaults(),
	}
}

// CreateReservation retiene qty unidades del producto para la sesión por el TTL configurado.
// Si la sesión ya tiene una reserva activa del producto, la cantidad se reemplaza (no se acumula).
func (uc *ReservationUseCase) CreateReservation(ctx context.Context, sessionID string, productID, qty int64) (*entity.Reservation, error) {
	if err := validateHold(sessionID, productID, qty); err != nil {
		return nil, err
	}
	var out *entity.Reservation
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		r, err := uc.holdInTx(ctx, repos, sessionID, productID, qty, false)
		out = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReservation reemplaza la cantidad de la reserva tentativa existente.
// Una disminución siempre procede; un aumento se valida contando la cantidad previa como ya consumida.
func (uc *ReservationUseCase) UpdateReservation(ctx context.Context, sessionID string, productID, newQty int64) (*entity.Reservation, error) {
	if err := validateHold(sessionID, productID, newQty); err != nil {
		return nil, err
	}
	var out *entity.Reservation
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		r, err := uc.holdInTx(ctx, repos, sessionID, productID, newQty, true)
		out = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// holdInTx crea o reemplaza la reserva tentativa con la fila del libro bloqueada.
func (uc *ReservationUseCase) holdInTx(
	ctx context.Context,
	repos repository.Repositories,
	sessionID string,
	productID, qty int64,
	mustExist bool,
) (*entity.Reservation, error) {
	now := uc.cfg.Now()

	product, err := repos.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}

	// Bloquea la fila del libro para serializar reservas concurrentes del mismo producto
	loc, err := repos.LocationStocks().GetForUpdate(ctx, productID, uc.cfg.LocationID)
	if err != nil {
		return nil, err
	}
	var limit *entity.SalesLimit
	if product.IsFrame() {
		if limit, err = repos.SalesLimits().Get(ctx, productID); err != nil {
			return nil, err
		}
	}

	existing, err := repos.Reservations().FindActiveTentative(ctx, sessionID, productID, now)
	if err != nil {
		return nil, err
	}
	if existing == nil && mustExist {
		return nil, fmt.Errorf("%w: reserva tentativa de la sesión %s para el producto %d", domain.ErrNotFound, sessionID, productID)
	}

	tentative, err := repos.Reservations().SumActiveTentative(ctx, productID, now)
	if err != nil {
		return nil, err
	}
	available := inventory.Availability(product, loc, limit, tentative).Available

	if existing != nil {
		// La cantidad previa ya está descontada de available
		if need := qty - existing.Quantity; need > 0 && available < need {
			uc.metrics.OutOfStock(productID)
			return nil, domain.NewOutOfStock(productID, qty, available+existing.Quantity)
		}
		existing.Quantity = qty
		existing.Extend(now, uc.cfg.ReservationTTL)
		if err := repos.Reservations().Save(ctx, existing); err != nil {
			return nil, err
		}
		uc.metrics.ReservationHeld(productID)
		return existing, nil
	}

	if available < qty {
		uc.metrics.OutOfStock(productID)
		return nil, domain.NewOutOfStock(productID, qty, available)
	}
	r := entity.NewTentativeReservation(sessionID, productID, qty, now, uc.cfg.ReservationTTL)
	if err := repos.Reservations().Create(ctx, r); err != nil {
		return nil, err
	}
	uc.metrics.ReservationHeld(productID)
	uc.log.Debug().
		Str("session_id", sessionID).
		Int64("product_id", productID).
		Int64("qty", qty).
		Msg("reserva tentativa creada")
	return r, nil
}

// ReleaseReservation borra lógicamente la reserva tentativa de la sesión para el producto.
// Sin reserva activa no hace nada.
func (uc *ReservationUseCase) ReleaseReservation(ctx context.Context, sessionID string, productID int64) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Invalid("session_id es requerido")
	}
	return uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		now := uc.cfg.Now()
		r, err := repos.Reservations().FindActiveTentative(ctx, sessionID, productID, now)
		if err != nil || r == nil {
			return err
		}
		r.Revoke(now)
		return repos.Reservations().Save(ctx, r)
	})
}

// ReleaseAllReservations libera todas las tentativas de la sesión; devuelve cuántas liberó.
func (uc *ReservationUseCase) ReleaseAllReservations(ctx context.Context, sessionID string) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, domain.Invalid("session_id es requerido")
	}
	released := 0
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		now := uc.cfg.Now()
		list, err := repos.Reservations().ListActiveTentativeBySession(ctx, sessionID, now)
		if err != nil {
			return err
		}
		for _, r := range list {
			r.Revoke(now)
			if err := repos.Reservations().Save(ctx, r); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// SweepExpired borra lógicamente las tentativas vencidas. Es best-effort y no se acopla
// a ninguna otra operación: la disponibilidad ya las ignora al leer.
func (uc *ReservationUseCase) SweepExpired(ctx context.Context) (int64, error) {
	n, err := uc.reads.Reservations().RevokeExpired(ctx, uc.cfg.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired reservations: %w", err)
	}
	if n > 0 {
		uc.metrics.ReservationsSwept(n)
		uc.log.Info().Int64("count", n).Msg("reservas tentativas vencidas liberadas")
	}
	return n, nil
}

func validateHold(sessionID string, productID, qty int64) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Invalid("session_id es requerido")
	}
	if productID <= 0 {
		return domain.Invalid("product_id inválido")
	}
	if qty <= 0 {
		return domain.Invalid("la cantidad debe ser mayor que cero")
	}
	return nil
}
