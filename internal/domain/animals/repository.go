package animals

import (
	"context"
	"time"

	"shelter-operations/internal/domain/catalog"
)

// Repository es el colaborador de persistencia.
// Toda escritura pasa por WithinTx: si fn devuelve error, nada queda visible.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetByID(ctx context.Context, id string) (Animal, error)
	List(ctx context.Context, filter ListFilter) ([]Animal, error)
	CountByStatus(ctx context.Context) (map[catalog.Status]int, error)

	// ListHistory devuelve el historial ordenado por changed_at asc, seq asc,
	// junto con el total de filas del animal.
	ListHistory(ctx context.Context, animalID string, page Page) ([]ChangeRecord, int, error)
}

// Tx expone las operaciones válidas dentro de una transacción.
// No hay update ni delete de historial.
type Tx interface {
	HistoryAppender

	// GetForUpdate carga el animal bloqueando la fila hasta el commit.
	GetForUpdate(ctx context.Context, id string) (Animal, error)
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
}

// HistoryAppender es lo único que necesita el HistoryRecorder.
type HistoryAppender interface {
	// AppendHistory inserta la fila y la devuelve con Seq asignado.
	AppendHistory(ctx context.Context, rec ChangeRecord) (ChangeRecord, error)
	// LatestChangeAt devuelve el changed_at más reciente del animal (zero si no hay).
	LatestChangeAt(ctx context.Context, animalID string) (time.Time, error)
}

type ListFilter struct {
	Statuses []catalog.Status
	Limit    int
	Offset   int
}

type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Normalize aplica los mismos límites que el listado de eventos: 1..200, default 50.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
