package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// PlanFrameGrants
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanFrameGrants_FIFO(t *testing.T) {
	a := &entity.OrderItem{ID: 1, Quantity: 3}
	b := &entity.OrderItem{ID: 2, Quantity: 4}

	grants, total := inventory.PlanFrameGrants(5, []*entity.OrderItem{a, b})

	require.Len(t, grants, 2)
	assert.Equal(t, int64(3), grants[0].Qty, "el pedido más antiguo se cubre completo")
	assert.Equal(t, int64(2), grants[1].Qty, "el siguiente recibe lo que sobra")
	assert.Equal(t, int64(5), total)
	assert.Zero(t, a.CommittedQty, "no modifica los ítems")
}

func TestPlanFrameGrants_SinCapacidad(t *testing.T) {
	grants, total := inventory.PlanFrameGrants(0, []*entity.OrderItem{{ID: 1, Quantity: 3}})
	assert.Empty(t, grants)
	assert.Zero(t, total)
}

func TestPlanFrameGrants_SaltaCubiertos(t *testing.T) {
	done := &entity.OrderItem{ID: 1, Quantity: 2, CommittedQty: 2}
	next := &entity.OrderItem{ID: 2, Quantity: 2}
	grants, total := inventory.PlanFrameGrants(10, []*entity.OrderItem{done, next})
	require.Len(t, grants, 1)
	assert.Equal(t, next, grants[0].Item)
	assert.Equal(t, int64(2), total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Capacidad y disponibilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestRemainingCapacity_FrameAcotadoPorCupo(t *testing.T) {
	p := &entity.Product{ID: 7, AllocationType: entity.AllocationTypeFrame}
	loc := &entity.LocationStock{AllocatableQty: 100, CommittedQty: 10}
	limit := &entity.SalesLimit{FrameLimitQty: 20, ConsumedQty: 15}

	assert.Equal(t, int64(5), inventory.RemainingCapacity(p, loc, limit))
	assert.Equal(t, int64(90), inventory.RemainingCapacity(p, loc, nil), "sin cupo manda la ubicación")

	realProduct := &entity.Product{ID: 1, AllocationType: entity.AllocationTypeReal}
	assert.Equal(t, int64(90), inventory.RemainingCapacity(realProduct, loc, limit), "REAL ignora el cupo")
}

func TestAvailability_NuncaNegativa(t *testing.T) {
	p := &entity.Product{ID: 42, AllocationType: entity.AllocationTypeReal}
	loc := &entity.LocationStock{AllocatableQty: 4, CommittedQty: 1}

	av := inventory.Availability(p, loc, nil, 10)
	assert.Zero(t, av.Available)
	assert.Equal(t, int64(10), av.TentativeReserved)
	assert.Equal(t, "25", av.UtilizationPct.String())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "33.33", inventory.Percent(1, 3).String())
	assert.True(t, inventory.Percent(5, 0).IsZero())
}
