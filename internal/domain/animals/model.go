package animals

import (
	"time"

	"shelter-operations/internal/domain/catalog"
)

// Animal es el subconjunto del animal albergado relevante para el lifecycle.
// Status y LocationType siempre son valores del catálogo.
type Animal struct {
	ID string

	Name    string
	Species string

	Status       catalog.Status
	LocationType catalog.Location
	LocationNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field identifica qué campo cambió en un registro de historial.
type Field string

const (
	FieldStatus       Field = "status"
	FieldLocationType Field = "location_type"
)

// ChangeRecord es una fila inmutable del historial de lifecycle.
// OldValue es nil solo en el registro de alta del animal.
// ChangedBy es nil si el cambio lo generó el sistema.
type ChangeRecord struct {
	ID  string
	Seq int64 // orden de inserción, asignado por el store

	AnimalID string
	Field    Field

	OldValue *string
	NewValue *string

	Reason    string
	ChangedBy *string
	ChangedAt time.Time
}

// Census resume cuántos animales hay por estado, usando las
// clasificaciones del catálogo para "en residencia" y "listo para adopción".
type Census struct {
	ByStatus         map[catalog.Status]int
	Total            int
	InResidence      int
	ReadyForAdoption int
}
