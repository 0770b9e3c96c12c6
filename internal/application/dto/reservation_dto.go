package dto

import "time"

// CreateReservationRequest body de POST /api/reservations.
type CreateReservationRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID int64  `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// UpdateReservationRequest body de PUT /api/reservations/:sessionId/:productId.
type UpdateReservationRequest struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// ReservationDTO reserva tentativa.
type ReservationDTO struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	ProductID int64      `json:"product_id"`
	Quantity  int64      `json:"quantity"`
	Type      string     `json:"type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ReleaseAllResponse DELETE /api/reservations/:sessionId.
type ReleaseAllResponse struct {
	SessionID string `json:"session_id"`
	Released  int    `json:"released"`
}
