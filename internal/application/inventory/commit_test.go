package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// CommitReservations
// ──────────────────────────────────────────────────────────────────────────────

func TestCommitReservations_RealConvierteLaTentativa(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	_, err := f.uc.CreateReservation(f.ctx, "s1", realID, 2)
	require.NoError(t, err)

	res, err := f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{realID, 2}))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(2), res.Lines[0].Committed)
	assert.Zero(t, res.Lines[0].Shortfall)

	loc := f.ledger(t, realID)
	assert.Equal(t, int64(2), loc.CommittedQty, "el libro registra lo comprometido")
	assert.Equal(t, int64(3), f.available(t, realID), "la tentativa ya no resta dos veces")

	committed, err := f.store.Repositories().Reservations().FindCommitted(f.ctx, 100, realID)
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, entity.ReservationTypeCommitted, committed.Type)
	assert.Nil(t, committed.ExpiresAt, "las comprometidas no vencen")

	events := f.pendingEvents(t)
	require.Len(t, events[entity.EventOrderPlaced], 1)
	placed := decode[entity.OrderPlacedPayload](t, events[entity.EventOrderPlaced][0])
	assert.Equal(t, int64(100), placed.OrderID)
	assert.Empty(t, placed.FrameProductIDs)
	assert.Len(t, events[entity.EventOperationPerformed], 1, "el commit deja su auditoría")
}

func TestCommitReservations_RealSinStockRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 1)
	f.putReal(41, 5)
	_, err := f.uc.CreateReservation(f.ctx, "s2", realID, 1)
	require.NoError(t, err)

	_, err = f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{41, 2}, [2]int64{realID, 1}))
	assert.ErrorIs(t, err, domain.ErrOutOfStock, "lo retenido por otra sesión no se puede comprometer")

	assert.Zero(t, f.ledger(t, 41).CommittedQty, "la línea ya procesada se revierte con la transacción")
	assert.Empty(t, f.items(t, 100))
	assert.Empty(t, f.pendingEvents(t)[entity.EventOrderPlaced])
}

func TestCommitReservations_FrameParcialDejaFaltante(t *testing.T) {
	f := newFixture(t)
	f.putFrame(frameID, 100)
	f.store.PutSalesLimit(&entity.SalesLimit{ProductID: frameID, FrameLimitQty: 3})

	res, err := f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{frameID, 5}))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(3), res.Lines[0].Committed, "se cubre hasta el cupo")
	assert.Equal(t, int64(2), res.Lines[0].Shortfall)

	limit, err := f.store.Repositories().SalesLimits().Get(f.ctx, frameID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), limit.ConsumedQty)

	placed := decode[entity.OrderPlacedPayload](t, f.pendingEvents(t)[entity.EventOrderPlaced][0])
	assert.Equal(t, []int64{frameID}, placed.FrameProductIDs)
}

func TestCommitReservations_FrameRespetaLaColaFIFO(t *testing.T) {
	f := newFixture(t)
	f.putFrame(frameID, 3)

	first, err := f.uc.CommitReservations(f.ctx, "s1", order(1, "s1", [2]int64{frameID, 5}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Lines[0].Committed)
	assert.Equal(t, int64(2), first.Lines[0].Shortfall)

	_, err = f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{ProductID: frameID, Delta: 2, Reason: "reposición", Actor: "u1"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	second, err := f.uc.CommitReservations(f.ctx, "s2", order(2, "s2", [2]int64{frameID, 2}))
	require.NoError(t, err)
	require.Len(t, second.Lines, 1)
	assert.Zero(t, second.Lines[0].Committed, "el pedido nuevo no se adelanta al faltante anterior")
	assert.Equal(t, int64(2), second.Lines[0].Shortfall)

	older := f.items(t, 1)
	require.Len(t, older, 1)
	assert.Equal(t, int64(5), older[0].CommittedQty, "la reposición completa primero al pedido más antiguo")
	assert.Equal(t, int64(5), f.ledger(t, frameID).CommittedQty)
}

func TestCommitReservations_ReintentoEsIdempotente(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	_, err := f.uc.CreateReservation(f.ctx, "s1", realID, 2)
	require.NoError(t, err)

	first, err := f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{realID, 2}))
	require.NoError(t, err)
	again, err := f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{realID, 2}))
	require.NoError(t, err)

	assert.Equal(t, first.Lines, again.Lines, "el reintento devuelve el resultado registrado")
	assert.Equal(t, int64(2), f.ledger(t, realID).CommittedQty, "no se compromete dos veces")
	assert.Len(t, f.items(t, 100), 1)
	assert.Equal(t, int64(3), f.available(t, realID))
	assert.Len(t, f.pendingEvents(t)[entity.EventOrderPlaced], 1)

	committed, err := f.store.Repositories().Reservations().FindCommitted(f.ctx, 100, realID)
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, int64(2), committed.Quantity)
}

func TestCommitReservations_LiberaTentativasFueraDelPedido(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	f.putReal(43, 5)
	_, err := f.uc.CreateReservation(f.ctx, "s1", realID, 1)
	require.NoError(t, err)
	_, err = f.uc.CreateReservation(f.ctx, "s1", 43, 2)
	require.NoError(t, err)

	_, err = f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{realID, 1}))
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.available(t, 43), "la tentativa del producto no pedido se libera")
}

func TestCommitReservations_PedidoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CommitReservations(f.ctx, "s1", &entity.Order{ID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReleaseCommittedReservations / ConfirmOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestReleaseCommitted_DevuelveAlLibroYCancelaItems(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	f.putFrame(frameID, 10)
	_, err := f.uc.CommitReservations(f.ctx, "s1", order(100, "s1", [2]int64{realID, 2}, [2]int64{frameID, 3}))
	require.NoError(t, err)

	released, err := f.uc.ReleaseCommittedReservations(f.ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(5), released)
	assert.Zero(t, f.ledger(t, realID).CommittedQty)
	assert.Zero(t, f.ledger(t, frameID).CommittedQty)

	for _, it := range f.items(t, 100) {
		assert.Equal(t, entity.OrderStatusCancelled, it.Status)
	}
	replenished := f.pendingEvents(t)[entity.EventStockReplenished]
	require.Len(t, replenished, 1, "solo el producto frame avisa capacidad nueva")
	assert.Equal(t, "order_cancelled", decode[entity.StockReplenishedPayload](t, replenished[0]).Reason)

	again, err := f.uc.ReleaseCommittedReservations(f.ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, again, "repetir la liberación no cambia nada")
}

func TestConfirmOrder(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	o := order(100, "s1", [2]int64{realID, 1})
	o.CustomerEmail = "ana@example.com"
	o.CustomerName = "Ana"
	_, err := f.uc.CommitReservations(f.ctx, "s1", o)
	require.NoError(t, err)

	require.NoError(t, f.uc.ConfirmOrder(f.ctx, o))
	assert.Equal(t, entity.OrderStatusConfirmed, f.items(t, 100)[0].Status)

	confirmed := f.pendingEvents(t)[entity.EventOrderConfirmed]
	require.Len(t, confirmed, 1)
	p := decode[entity.OrderConfirmedPayload](t, confirmed[0])
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "Ana", p.CustomerName)

	_, err = f.uc.ReleaseCommittedReservations(f.ctx, 100)
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.ConfirmOrder(f.ctx, o), domain.ErrConflict, "un pedido cancelado no se confirma")
}
