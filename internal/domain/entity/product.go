package entity

import "time"

// Tipos de asignación de un producto.
const (
	AllocationTypeReal  = "REAL"  // limitado por el stock físico de la ubicación
	AllocationTypeFrame = "FRAME" // limitado por un cupo de venta, se asigna FIFO
)

// Product es la vista del catálogo que necesita el motor de reservas (el catálogo no vive aquí).
type Product struct {
	ID             int64
	Name           string
	AllocationType string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsFrame indica si el producto se vende por cupo (frame).
func (p *Product) IsFrame() bool {
	return p.AllocationType == AllocationTypeFrame
}

// ValidAllocationType valida el tipo de asignación.
func ValidAllocationType(t string) bool {
	return t == AllocationTypeReal || t == AllocationTypeFrame
}
