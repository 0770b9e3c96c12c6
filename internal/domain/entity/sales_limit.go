package entity

import "time"

// SalesLimit cupo de venta (frame) de un producto, independiente del stock físico.
// Invariante: 0 <= ConsumedQty <= FrameLimitQty.
type SalesLimit struct {
	ProductID     int64
	FrameLimitQty int64
	ConsumedQty   int64
	UpdatedAt     time.Time
}

// RemainingQty cupo disponible.
func (l *SalesLimit) RemainingQty() int64 {
	return l.FrameLimitQty - l.ConsumedQty
}

// Consume suma qty al cupo consumido.
func (l *SalesLimit) Consume(qty int64, now time.Time) {
	l.ConsumedQty += qty
	l.UpdatedAt = now
}

// Restore devuelve qty al cupo sin bajar de cero.
func (l *SalesLimit) Restore(qty int64, now time.Time) {
	l.ConsumedQty -= qty
	if l.ConsumedQty < 0 {
		l.ConsumedQty = 0
	}
	l.UpdatedAt = now
}
