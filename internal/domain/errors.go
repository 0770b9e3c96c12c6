package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrOutOfStock   = errors.New("stock insuficiente")
)

// OutOfStockError detalla un faltante: qué producto, cuánto se pidió y cuánto había disponible.
// errors.Is(err, ErrOutOfStock) es verdadero para cualquier OutOfStockError.
type OutOfStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %d: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Is permite comparar contra el sentinel ErrOutOfStock.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// NewOutOfStock construye el error de faltante. Available negativo se reporta como 0.
func NewOutOfStock(productID, requested, available int64) error {
	if available < 0 {
		available = 0
	}
	return &OutOfStockError{ProductID: productID, Requested: requested, Available: available}
}

// Invalid envuelve ErrInvalidInput con un motivo legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
