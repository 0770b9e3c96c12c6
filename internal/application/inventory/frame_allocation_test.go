package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// Escenario: producto frame sin fila en el libro; el pedido A pide 3 y el B pide 4.
// Al llegar 5 unidades de capacidad, A se cubre completo y B recibe 2.
func TestFrameAllocation_FIFOConFilaCreadaAlVuelo(t *testing.T) {
	f := newFixture(t)
	f.putFrame(frameID, 0)

	_, err := f.uc.CommitReservations(f.ctx, "sA", order(1, "sA", [2]int64{frameID, 3}))
	require.NoError(t, err)
	f.clock.Advance(1)
	_, err = f.uc.CommitReservations(f.ctx, "sB", order(2, "sB", [2]int64{frameID, 4}))
	require.NoError(t, err)
	assert.Zero(t, f.ledger(t, frameID).CommittedQty, "sin capacidad nada se compromete")

	_, err = f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{ProductID: frameID, Delta: 5, Reason: "llegada", Actor: "admin"})
	require.NoError(t, err)

	granted, err := f.frames.Allocate(f.ctx, frameID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), granted)

	assert.Equal(t, int64(3), f.items(t, 1)[0].CommittedQty, "el pedido más antiguo se cubre completo")
	assert.Equal(t, int64(2), f.items(t, 2)[0].CommittedQty)
	assert.Equal(t, int64(5), f.ledger(t, frameID).CommittedQty)

	r, err := f.store.Repositories().Reservations().FindCommitted(f.ctx, 2, frameID)
	require.NoError(t, err)
	require.NotNil(t, r, "el otorgamiento crea la reserva comprometida del pedido")
	assert.Equal(t, int64(2), r.Quantity)

	again, err := f.frames.Allocate(f.ctx, frameID)
	require.NoError(t, err)
	assert.Zero(t, again, "sin capacidad restante otra corrida no otorga nada")
}

func TestFrameAllocation_RespetaCupo(t *testing.T) {
	f := newFixture(t)
	f.putFrame(frameID, 100)
	f.store.PutSalesLimit(&entity.SalesLimit{ProductID: frameID, FrameLimitQty: 0})
	_, err := f.uc.CommitReservations(f.ctx, "s1", order(1, "s1", [2]int64{frameID, 4}))
	require.NoError(t, err)

	granted, err := f.frames.Allocate(f.ctx, frameID)
	require.NoError(t, err)
	assert.Zero(t, granted, "con cupo agotado no se asigna aunque haya stock")
}

func TestFrameAllocation_IgnoraProductosReales(t *testing.T) {
	f := newFixture(t)
	f.putReal(realID, 5)
	granted, err := f.frames.Allocate(f.ctx, realID)
	require.NoError(t, err)
	assert.Zero(t, granted)

	granted, err = f.frames.Allocate(f.ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, granted, "producto inexistente no es error")
}
