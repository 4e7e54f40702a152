package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shelter-operations/internal/domain/animals"
	"shelter-operations/internal/domain/catalog"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

// WithinTx corre fn en una transacción READ COMMITTED. GetForUpdate toma
// el lock de fila, así dos PATCH sobre el mismo animal se serializan.
func (r *AnimalsRepo) WithinTx(ctx context.Context, fn func(tx animals.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const animalColumns = `id, name, species, status, location_type, location_note, created_at, updated_at`

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
	return scanAnimal(row)
}

func (r *AnimalsRepo) List(ctx context.Context, filter animals.ListFilter) ([]animals.Animal, error) {
	q := `SELECT ` + animalColumns + ` FROM animals`
	args := []any{}

	if len(filter.Statuses) > 0 {
		ph := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			args = append(args, string(s))
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		q += ` WHERE status IN (` + strings.Join(ph, ",") + `)`
	}

	args = append(args, filter.Limit, filter.Offset)
	q += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) CountByStatus(ctx context.Context) (map[catalog.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM animals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[catalog.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[catalog.Status(status)] = n
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) ListHistory(ctx context.Context, animalID string, page animals.Page) ([]animals.ChangeRecord, int, error) {
	animalID = strings.TrimSpace(animalID)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM animal_status_history WHERE animal_id = $1`, animalID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, id, animal_id, field, old_value, new_value, reason, changed_by, changed_at
		FROM animal_status_history
		WHERE animal_id = $1
		ORDER BY changed_at ASC, seq ASC
		LIMIT $2 OFFSET $3
	`, animalID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]animals.ChangeRecord, 0)
	for rows.Next() {
		var (
			rec       animals.ChangeRecord
			field     string
			oldValue  sql.NullString
			newValue  sql.NullString
			changedBy sql.NullString
		)
		if err := rows.Scan(
			&rec.Seq, &rec.ID, &rec.AnimalID, &field,
			&oldValue, &newValue, &rec.Reason, &changedBy, &rec.ChangedAt,
		); err != nil {
			return nil, 0, err
		}
		rec.Field = animals.Field(field)
		rec.OldValue = fromNullString(oldValue)
		rec.NewValue = fromNullString(newValue)
		rec.ChangedBy = fromNullString(changedBy)
		rec.ChangedAt = rec.ChangedAt.UTC()
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) GetForUpdate(ctx context.Context, id string) (animals.Animal, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1 FOR UPDATE`, strings.TrimSpace(id))
	return scanAnimal(row)
}

func (t *pgTx) Create(ctx context.Context, a animals.Animal) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.Name,
		a.Species,
		string(a.Status),
		string(a.LocationType),
		a.LocationNote,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (t *pgTx) Update(ctx context.Context, a animals.Animal) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE animals
		SET
			status = $2,
			location_type = $3,
			location_note = $4,
			updated_at = $5
		WHERE id = $1
	`,
		a.ID,
		string(a.Status),
		string(a.LocationType),
		a.LocationNote,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) AppendHistory(ctx context.Context, rec animals.ChangeRecord) (animals.ChangeRecord, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO animal_status_history (
			id, animal_id, field, old_value, new_value, reason, changed_by, changed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING seq
	`,
		rec.ID,
		rec.AnimalID,
		string(rec.Field),
		toNullString(rec.OldValue),
		toNullString(rec.NewValue),
		rec.Reason,
		toNullString(rec.ChangedBy),
		rec.ChangedAt,
	).Scan(&rec.Seq)
	if err != nil {
		return animals.ChangeRecord{}, err
	}
	return rec, nil
}

func (t *pgTx) LatestChangeAt(ctx context.Context, animalID string) (time.Time, error) {
	var latest sql.NullTime
	err := t.tx.QueryRowContext(ctx,
		`SELECT MAX(changed_at) FROM animal_status_history WHERE animal_id = $1`, animalID,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time.UTC(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var (
		a        animals.Animal
		status   string
		location string
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Species,
		&status, &location, &a.LocationNote,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}
	a.Status = catalog.Status(status)
	a.LocationType = catalog.Location(location)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
