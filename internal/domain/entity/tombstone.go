package entity

import "time"

// Tombstone marca de borrado lógico compartida por las entidades que nunca se eliminan físicamente.
// Los repositorios filtran siempre las filas con DeletedAt != nil.
type Tombstone struct {
	DeletedAt *time.Time
}

// IsDeleted indica si la fila fue borrada lógicamente.
func (t Tombstone) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Delete marca la fila como borrada. Es idempotente: conserva la primera fecha.
func (t *Tombstone) Delete(now time.Time) {
	if t.DeletedAt == nil {
		t.DeletedAt = &now
	}
}
