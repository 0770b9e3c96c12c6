package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

func TestReservation_Vencimiento(t *testing.T) {
	r := entity.NewTentativeReservation("s1", 42, 2, t0, 15*time.Minute)

	assert.True(t, r.IsActive(t0.Add(14*time.Minute)))
	assert.False(t, r.IsActive(t0.Add(15*time.Minute)), "vence exactamente al cumplirse el TTL")

	r.Extend(t0.Add(10*time.Minute), 15*time.Minute)
	assert.True(t, r.IsActive(t0.Add(20*time.Minute)), "extender renueva el TTL desde ahora")
}

func TestReservation_ComprometidaNoVence(t *testing.T) {
	r := entity.NewCommittedReservation("s1", 9, 42, 2, t0)
	assert.False(t, r.IsExpired(t0.Add(24*time.Hour*365)))

	r.Revoke(t0)
	assert.False(t, r.IsActive(t0), "revocada ya no cuenta")
}

func TestLocationStock_ReleaseNoBajaDeCero(t *testing.T) {
	s := entity.NewLocationStock(42, entity.DefaultLocationID, t0)
	s.AllocatableQty = 5
	s.Commit(3, t0)
	assert.Equal(t, int64(2), s.RemainingQty())

	s.Release(10, t0)
	assert.Zero(t, s.CommittedQty)
}

func TestOrderItem_Shortfall(t *testing.T) {
	it := &entity.OrderItem{Quantity: 4}
	it.Grant(3, t0)
	assert.Equal(t, int64(1), it.Shortfall())
	it.Grant(2, t0)
	assert.Zero(t, it.Shortfall(), "nunca negativo")
}
