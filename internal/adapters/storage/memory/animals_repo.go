package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"shelter-operations/internal/domain/animals"
	"shelter-operations/internal/domain/catalog"
)

var (
	ErrNotFound = fmt.Errorf("memory: %w", animals.ErrNotFound)
)

// animalsRepo guarda animales e historial en memoria. Una transacción
// toma el lock de escritura completo y aplica sus cambios solo en commit.
type animalsRepo struct {
	mu      sync.RWMutex
	byID    map[string]animals.Animal
	history map[string][]animals.ChangeRecord // por animal, en orden de inserción
	seq     int64
}

func NewAnimalsRepo() animals.Repository {
	return &animalsRepo{
		byID:    make(map[string]animals.Animal),
		history: make(map[string][]animals.ChangeRecord),
	}
}

func (r *animalsRepo) WithinTx(ctx context.Context, fn func(tx animals.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		repo:   r,
		staged: make(map[string]animals.Animal),
		seq:    r.seq,
	}
	if err := fn(tx); err != nil {
		return err
	}

	// commit
	for id, a := range tx.staged {
		r.byID[id] = a
	}
	for _, rec := range tx.history {
		r.history[rec.AnimalID] = append(r.history[rec.AnimalID], rec)
	}
	r.seq = tx.seq
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *animalsRepo) List(ctx context.Context, filter animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[catalog.Status]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		wanted[s] = true
	}

	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		if len(wanted) > 0 && !wanted[a.Status] {
			continue
		}
		out = append(out, a)
	}

	// created_at asc, id asc (estable)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *animalsRepo) CountByStatus(ctx context.Context) (map[catalog.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[catalog.Status]int)
	for _, a := range r.byID {
		out[a.Status]++
	}
	return out, nil
}

func (r *animalsRepo) ListHistory(ctx context.Context, animalID string, page animals.Page) ([]animals.ChangeRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := append([]animals.ChangeRecord(nil), r.history[strings.TrimSpace(animalID)]...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ChangedAt.Equal(all[j].ChangedAt) {
			return all[i].Seq < all[j].Seq
		}
		return all[i].ChangedAt.Before(all[j].ChangedAt)
	})

	return paginate(all, page.Offset, page.Limit), len(all), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// memTx corre con r.mu tomado (write lock).
type memTx struct {
	repo    *animalsRepo
	staged  map[string]animals.Animal
	history []animals.ChangeRecord
	seq     int64
}

func (t *memTx) current(id string) (animals.Animal, bool) {
	if a, ok := t.staged[id]; ok {
		return a, true
	}
	a, ok := t.repo.byID[id]
	return a, ok
}

func (t *memTx) GetForUpdate(ctx context.Context, id string) (animals.Animal, error) {
	a, ok := t.current(strings.TrimSpace(id))
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (t *memTx) Create(ctx context.Context, a animals.Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := t.current(a.ID); exists {
		return errors.New("animal already exists")
	}
	t.staged[a.ID] = a
	return nil
}

func (t *memTx) Update(ctx context.Context, a animals.Animal) error {
	if _, exists := t.current(a.ID); !exists {
		return ErrNotFound
	}
	t.staged[a.ID] = a
	return nil
}

func (t *memTx) AppendHistory(ctx context.Context, rec animals.ChangeRecord) (animals.ChangeRecord, error) {
	if _, exists := t.current(rec.AnimalID); !exists {
		return animals.ChangeRecord{}, fmt.Errorf("history for unknown animal %q", rec.AnimalID)
	}
	t.seq++
	rec.Seq = t.seq
	t.history = append(t.history, rec)
	return rec, nil
}

func (t *memTx) LatestChangeAt(ctx context.Context, animalID string) (time.Time, error) {
	var latest time.Time
	for _, h := range t.repo.history[animalID] {
		if h.ChangedAt.After(latest) {
			latest = h.ChangedAt
		}
	}
	for _, h := range t.history {
		if h.AnimalID == animalID && h.ChangedAt.After(latest) {
			latest = h.ChangedAt
		}
	}
	return latest, nil
}
