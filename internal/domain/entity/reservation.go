package entity

import "time"

// Tipos de reserva.
const (
	ReservationTypeTentative = "TENTATIVE" // carrito, con vencimiento
	ReservationTypeCommitted = "COMMITTED" // respaldada por un pedido
)

// Reservation retención de stock: tentativa por sesión o comprometida por pedido.
type Reservation struct {
	ID        int64
	SessionID string // tentativa
	OrderID   int64  // comprometida (0 si tentativa)
	ProductID int64
	Quantity  int64
	Type      string
	ExpiresAt *time.Time // solo tentativas
	CreatedAt time.Time
	UpdatedAt time.Time
	Tombstone
}

// NewTentativeReservation reserva de carrito que vence en now+ttl.
func NewTentativeReservation(sessionID string, productID, qty int64, now time.Time, ttl time.Duration) *Reservation {
	exp := now.Add(ttl)
	return &Reservation{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  qty,
		Type:      ReservationTypeTentative,
		ExpiresAt: &exp,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCommittedReservation reserva ligada a un pedido. No vence.
func NewCommittedReservation(sessionID string, orderID, productID, qty int64, now time.Time) *Reservation {
	return &Reservation{
		SessionID: sessionID,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		Type:      ReservationTypeCommitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired una tentativa vencida es lógicamente nula.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Type == ReservationTypeTentative && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// IsActive no borrada y, si es tentativa, no vencida.
func (r *Reservation) IsActive(now time.Time) bool {
	return !r.IsDeleted() && !r.IsExpired(now)
}

// Extend renueva el vencimiento de una tentativa.
func (r *Reservation) Extend(now time.Time, ttl time.Duration) {
	exp := now.Add(ttl)
	r.ExpiresAt = &exp
	r.UpdatedAt = now
}

// Revoke borrado lógico de la reserva.
func (r *Reservation) Revoke(now time.Time) {
	r.Delete(now)
	r.UpdatedAt = now
}
