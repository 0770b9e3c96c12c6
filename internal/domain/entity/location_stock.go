package entity

import "time"

// DefaultLocationID ubicación única usada cuando no se configura otra.
const DefaultLocationID = "DEFAULT"

// LocationStock fila del libro de stock por producto y ubicación.
// Invariante: 0 <= CommittedQty <= AllocatableQty. Solo se modifica bajo bloqueo exclusivo de fila.
type LocationStock struct {
	ProductID      int64
	LocationID     string
	AllocatableQty int64 // capacidad física / de abastecimiento
	CommittedQty   int64 // cantidad ya prometida a demanda confirmada
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewLocationStock fila vacía (cantidad cero) para creación perezosa.
func NewLocationStock(productID int64, locationID string, now time.Time) *LocationStock {
	return &LocationStock{
		ProductID:  productID,
		LocationID: locationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// RemainingQty capacidad aún no comprometida.
func (s *LocationStock) RemainingQty() int64 {
	return s.AllocatableQty - s.CommittedQty
}

// Commit suma qty al comprometido. El llamador valida contra RemainingQty antes.
func (s *LocationStock) Commit(qty int64, now time.Time) {
	s.CommittedQty += qty
	s.UpdatedAt = now
}

// Release resta qty del comprometido sin bajar de cero.
func (s *LocationStock) Release(qty int64, now time.Time) {
	s.CommittedQty -= qty
	if s.CommittedQty < 0 {
		s.CommittedQty = 0
	}
	s.UpdatedAt = now
}
