package inventory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// CommitLine resultado por ítem del pedido.
type CommitLine struct {
	ItemID    int64
	ProductID int64
	Requested int64
	Committed int64
	Shortfall int64 // queda para el motor frame
}

// CommitResult resultado de CommitReservations.
type CommitResult struct {
	OrderID int64
	Lines   []CommitLine
}

// CommitReservations convierte las reservas tentativas de la sesión en comprometidas para el pedido
// en su propia transacción. El ciclo de pedidos que ya tiene una transacción abierta usa CommitReservationsInTx.
func (uc *ReservationUseCase) CommitReservations(ctx context.Context, sessionID string, order *entity.Order) (*CommitResult, error) {
	var out *CommitResult
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		res, err := uc.CommitReservationsInTx(ctx, repos, sessionID, order)
		out = res
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommitReservationsInTx compromete el pedido dentro de la transacción del llamador.
// Los ítems del pedido son la demanda: un ítem REAL se cubre completo o falla con OUT_OF_STOCK
// (y el llamador revierte); un ítem FRAME entra a la cola FIFO del producto y recibe solo lo que
// sobra después de cubrir los faltantes de pedidos anteriores; el resto queda para el motor frame
// vía ORDER_PLACED. Las tentativas de la sesión fuera del pedido se liberan.
// Si el pedido ya tiene ítems, devuelve el resultado registrado sin cambiar nada (reintentos).
func (uc *ReservationUseCase) CommitReservationsInTx(
	ctx context.Context,
	repos repository.Repositories,
	sessionID string,
	order *entity.Order,
) (*CommitResult, error) {
	if order == nil || order.ID <= 0 {
		return nil, domain.Invalid("pedido inválido")
	}
	if len(order.Items) == 0 {
		return nil, domain.Invalid("el pedido %d no tiene ítems", order.ID)
	}
	now := uc.cfg.Now()

	holds, err := repos.Reservations().ListActiveTentativeBySession(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	holdByProduct := make(map[int64]*entity.Reservation, len(holds))
	for _, h := range holds {
		holdByProduct[h.ProductID] = h
	}

	// Orden estable por producto: dos pedidos concurrentes bloquean las filas en el mismo orden
	items := make([]*entity.OrderItem, len(order.Items))
	copy(items, order.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	result := &CommitResult{OrderID: order.ID}
	var productIDs, frameIDs []int64
	seen := map[int64]bool{}

	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.Invalid("cantidad inválida en el ítem del producto %d", item.ProductID)
		}
		item.OrderID = order.ID
		if item.Status == "" {
			item.Status = orderStatusOrDefault(order.Status)
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = now
		}

		product, err := repos.Products().GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, item.ProductID)
		}

		loc, err := repos.LocationStocks().GetForUpdate(ctx, item.ProductID, uc.cfg.LocationID)
		if err != nil {
			return nil, err
		}
		// Con la primera fila bloqueada, un reintento concurrente del mismo pedido ya ve los ítems del otro
		if i == 0 {
			existing, err := repos.OrderItems().ListByOrder(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			if len(existing) > 0 {
				uc.log.Info().Int64("order_id", order.ID).Msg("pedido ya comprometido, se devuelve el resultado registrado")
				return commitResultOf(order.ID, existing), nil
			}
		}
		var limit *entity.SalesLimit
		if product.IsFrame() {
			if limit, err = repos.SalesLimits().GetForUpdate(ctx, item.ProductID); err != nil {
				return nil, err
			}
		}

		// Lo retenido por esta sesión ya está garantizado; lo retenido por otras sesiones no se toca
		tentative, err := repos.Reservations().SumActiveTentative(ctx, item.ProductID, now)
		if err != nil {
			return nil, err
		}
		hold := holdByProduct[item.ProductID]
		if hold != nil {
			tentative -= hold.Quantity
		}
		capacity := inventory.RemainingCapacity(product, loc, limit) - tentative
		if capacity < 0 {
			capacity = 0
		}

		if product.IsFrame() {
			if err := repos.OrderItems().Save(ctx, item); err != nil {
				return nil, err
			}
			grants, total, err := grantFIFO(ctx, repos, item.ProductID, loc, limit, capacity, now)
			if err != nil {
				return nil, err
			}
			for _, g := range grants {
				if g.Item.ID == item.ID {
					item.CommittedQty = g.Item.CommittedQty
				}
			}
			if total > 0 {
				uc.metrics.FrameUnitsGranted(item.ProductID, total)
			}
		} else {
			want := item.Shortfall()
			if capacity < want {
				uc.metrics.OutOfStock(item.ProductID)
				return nil, domain.NewOutOfStock(item.ProductID, want, capacity)
			}
			item.Grant(want, now)
			loc.Commit(want, now)
			if err := repos.LocationStocks().Save(ctx, loc); err != nil {
				return nil, err
			}
			if err := repos.OrderItems().Save(ctx, item); err != nil {
				return nil, err
			}
			if err := addCommitted(ctx, repos, sessionID, order.ID, item.ProductID, want, now); err != nil {
				return nil, err
			}
		}

		if hold != nil {
			hold.Revoke(now)
			if err := repos.Reservations().Save(ctx, hold); err != nil {
				return nil, err
			}
			delete(holdByProduct, item.ProductID)
		}

		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
			if product.IsFrame() {
				frameIDs = append(frameIDs, item.ProductID)
			}
		}
		result.Lines = append(result.Lines, CommitLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Requested: item.Quantity,
			Committed: item.CommittedQty,
			Shortfall: item.Shortfall(),
		})
	}

	// Tentativas de productos que no llegaron al pedido
	for _, h := range holdByProduct {
		h.Revoke(now)
		if err := repos.Reservations().Save(ctx, h); err != nil {
			return nil, err
		}
	}

	orderID := strconv.FormatInt(order.ID, 10)
	if err := uc.publisher.Publish(ctx, repos, entity.EventOrderPlaced, orderID, entity.OrderPlacedPayload{
		OrderID:         order.ID,
		ProductIDs:      productIDs,
		FrameProductIDs: frameIDs,
	}); err != nil {
		return nil, err
	}
	if err := audit(ctx, uc.publisher, repos, OpCommitReservations, SystemActor, "order", orderID, result); err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("order_id", order.ID).
		Str("session_id", sessionID).
		Int("lines", len(result.Lines)).
		Msg("reservas comprometidas")
	return result, nil
}

// ReleaseCommittedReservations devuelve al libro lo comprometido por el pedido cancelado.
func (uc *ReservationUseCase) ReleaseCommittedReservations(ctx context.Context, orderID int64) (int64, error) {
	var released int64
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		n, err := uc.ReleaseCommittedReservationsInTx(ctx, repos, orderID)
		released = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// ReleaseCommittedReservationsInTx descuenta del libro cada reserva comprometida del pedido, las borra
// lógicamente y marca sus ítems CANCELLED. Repetirla sobre un pedido ya liberado no cambia nada.
// Devuelve las unidades liberadas.
func (uc *ReservationUseCase) ReleaseCommittedReservationsInTx(ctx context.Context, repos repository.Repositories, orderID int64) (int64, error) {
	if orderID <= 0 {
		return 0, domain.Invalid("order_id inválido")
	}
	now := uc.cfg.Now()

	list, err := repos.Reservations().ListCommittedByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })

	var released int64
	for _, r := range list {
		product, err := repos.Products().GetByID(ctx, r.ProductID)
		if err != nil {
			return 0, err
		}
		loc, err := repos.LocationStocks().GetForUpdate(ctx, r.ProductID, uc.cfg.LocationID)
		if err != nil {
			return 0, err
		}
		loc.Release(r.Quantity, now)
		if err := repos.LocationStocks().Save(ctx, loc); err != nil {
			return 0, err
		}
		frame := product != nil && product.IsFrame()
		if frame {
			limit, err := repos.SalesLimits().GetForUpdate(ctx, r.ProductID)
			if err != nil {
				return 0, err
			}
			if limit != nil {
				limit.Restore(r.Quantity, now)
				if err := repos.SalesLimits().Save(ctx, limit); err != nil {
					return 0, err
				}
			}
		}
		r.Revoke(now)
		if err := repos.Reservations().Save(ctx, r); err != nil {
			return 0, err
		}
		released += r.Quantity

		if frame {
			// La capacidad devuelta puede cubrir faltantes de pedidos posteriores
			if err := uc.publisher.Publish(ctx, repos, entity.EventStockReplenished, strconv.FormatInt(r.ProductID, 10),
				entity.StockReplenishedPayload{ProductID: r.ProductID, Reason: "order_cancelled"}); err != nil {
				return 0, err
			}
		}
	}

	items, err := repos.OrderItems().ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if item.Status == entity.OrderStatusCancelled {
			continue
		}
		item.Status = entity.OrderStatusCancelled
		item.UpdatedAt = now
		if err := repos.OrderItems().Save(ctx, item); err != nil {
			return 0, err
		}
	}

	if len(list) > 0 {
		if err := audit(ctx, uc.publisher, repos, OpReleaseCommitted, SystemActor, "order", strconv.FormatInt(orderID, 10),
			map[string]int64{"released_qty": released}); err != nil {
			return 0, err
		}
		uc.log.Info().Int64("order_id", orderID).Int64("released_qty", released).Msg("reservas comprometidas liberadas")
	}
	return released, nil
}

// ConfirmOrderInTx pasa los ítems del pedido a CONFIRMED y encola la notificación al cliente.
func (uc *ReservationUseCase) ConfirmOrderInTx(ctx context.Context, repos repository.Repositories, order *entity.Order) error {
	if order == nil || order.ID <= 0 {
		return domain.Invalid("pedido inválido")
	}
	now := uc.cfg.Now()
	items, err := repos.OrderItems().ListByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: pedido %d", domain.ErrNotFound, order.ID)
	}
	for _, item := range items {
		if item.Status == entity.OrderStatusCancelled {
			return fmt.Errorf("%w: el pedido %d está cancelado", domain.ErrConflict, order.ID)
		}
		item.Status = entity.OrderStatusConfirmed
		item.UpdatedAt = now
		if err := repos.OrderItems().Save(ctx, item); err != nil {
			return err
		}
	}
	orderID := strconv.FormatInt(order.ID, 10)
	if err := uc.publisher.Publish(ctx, repos, entity.EventOrderConfirmed, orderID, entity.OrderConfirmedPayload{
		OrderID:      order.ID,
		Email:        order.CustomerEmail,
		CustomerName: order.CustomerName,
	}); err != nil {
		return err
	}
	return audit(ctx, uc.publisher, repos, OpConfirmOrder, SystemActor, "order", orderID, map[string]int{"items": len(items)})
}

// ConfirmOrder versión con transacción propia de ConfirmOrderInTx.
func (uc *ReservationUseCase) ConfirmOrder(ctx context.Context, order *entity.Order) error {
	return uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		return uc.ConfirmOrderInTx(ctx, repos, order)
	})
}

// commitResultOf reconstruye el resultado de un commit a partir de los ítems guardados.
func commitResultOf(orderID int64, items []*entity.OrderItem) *CommitResult {
	res := &CommitResult{OrderID: orderID}
	for _, item := range items {
		res.Lines = append(res.Lines, CommitLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Requested: item.Quantity,
			Committed: item.CommittedQty,
			Shortfall: item.Shortfall(),
		})
	}
	return res
}

// addCommitted suma qty a la reserva comprometida del pedido para el producto, creándola si no existe.
func addCommitted(ctx context.Context, repos repository.Repositories, sessionID string, orderID, productID, qty int64, now time.Time) error {
	r, err := repos.Reservations().FindCommitted(ctx, orderID, productID)
	if err != nil {
		return err
	}
	if r == nil {
		return repos.Reservations().Create(ctx, entity.NewCommittedReservation(sessionID, orderID, productID, qty, now))
	}
	r.Quantity += qty
	r.UpdatedAt = now
	return repos.Reservations().Save(ctx, r)
}

func orderStatusOrDefault(status string) string {
	if status == "" {
		return entity.OrderStatusPending
	}
	return status
}
