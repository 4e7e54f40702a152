package animals

import (
	"context"
	"errors"
	"sort"
	"time"

	"shelter-operations/internal/domain/catalog"
)

// -------------------------
// Test repo (in-memory, con staging por transacción)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID    map[string]Animal
	history []ChangeRecord
	seq     int64

	failUpdate error
	failAppend error

	txCount int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}}
}

// seed inserta un animal sin pasar por el servicio (estado ya persistido).
func (r *testRepo) seed(a Animal) {
	r.byID[a.ID] = a
}

func (r *testRepo) historyFor(animalID string) []ChangeRecord {
	out := make([]ChangeRecord, 0)
	for _, h := range r.history {
		if h.AnimalID == animalID {
			out = append(out, h)
		}
	}
	return out
}

func (r *testRepo) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	r.txCount++
	tx := &testTx{repo: r, staged: map[string]Animal{}, seq: r.seq}
	if err := fn(tx); err != nil {
		return err
	}
	for id, a := range tx.staged {
		r.byID[id] = a
	}
	r.history = append(r.history, tx.history...)
	r.seq = tx.seq
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if a.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) CountByStatus(ctx context.Context) (map[catalog.Status]int, error) {
	out := map[catalog.Status]int{}
	for _, a := range r.byID {
		out[a.Status]++
	}
	return out, nil
}

func (r *testRepo) ListHistory(ctx context.Context, animalID string, page Page) ([]ChangeRecord, int, error) {
	all := r.historyFor(animalID)
	total := len(all)
	if page.Offset >= total {
		return []ChangeRecord{}, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return all[page.Offset:end], total, nil
}

type testTx struct {
	repo    *testRepo
	staged  map[string]Animal
	history []ChangeRecord
	seq     int64
}

func (t *testTx) GetForUpdate(ctx context.Context, id string) (Animal, error) {
	if a, ok := t.staged[id]; ok {
		return a, nil
	}
	a, ok := t.repo.byID[id]
	if !ok {
		return Animal{}, errRepoNotFoundWrapped
	}
	return a, nil
}

var errRepoNotFoundWrapped = errors.Join(errRepoNotFound, ErrNotFound)

func (t *testTx) Create(ctx context.Context, a Animal) error {
	if _, ok := t.repo.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	t.staged[a.ID] = a
	return nil
}

func (t *testTx) Update(ctx context.Context, a Animal) error {
	if t.repo.failUpdate != nil {
		return t.repo.failUpdate
	}
	t.staged[a.ID] = a
	return nil
}

func (t *testTx) AppendHistory(ctx context.Context, rec ChangeRecord) (ChangeRecord, error) {
	if t.repo.failAppend != nil {
		return ChangeRecord{}, t.repo.failAppend
	}
	t.seq++
	rec.Seq = t.seq
	t.history = append(t.history, rec)
	return rec, nil
}

func (t *testTx) LatestChangeAt(ctx context.Context, animalID string) (time.Time, error) {
	var latest time.Time
	for _, h := range append(t.repo.historyFor(animalID), t.history...) {
		if h.AnimalID == animalID && h.ChangedAt.After(latest) {
			latest = h.ChangedAt
		}
	}
	return latest, nil
}
