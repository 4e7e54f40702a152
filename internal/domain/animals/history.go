package animals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryRecorder agrega filas inmutables al historial. Se construye sobre
// la misma transacción que muta el animal; no expone update ni delete.
type HistoryRecorder struct {
	store HistoryAppender
	now   func() time.Time
	newID func() string
}

func NewHistoryRecorder(store HistoryAppender, now func() time.Time) *HistoryRecorder {
	if now == nil {
		now = time.Now
	}
	return &HistoryRecorder{
		store: store,
		now:   now,
		newID: uuid.NewString,
	}
}

type AppendInput struct {
	AnimalID string
	Field    Field
	OldValue *string
	NewValue *string
	Reason   string
	ActorID  string // vacío = cambio del sistema
}

// Append inserta exactamente una fila. changed_at nunca retrocede respecto
// del último registro del animal, aunque el reloj del servidor lo haga.
func (h *HistoryRecorder) Append(ctx context.Context, in AppendInput) (ChangeRecord, error) {
	animalID := strings.TrimSpace(in.AnimalID)
	if animalID == "" || strings.TrimSpace(string(in.Field)) == "" {
		return ChangeRecord{}, ErrInvalidInput
	}

	changedAt := h.now().UTC()
	latest, err := h.store.LatestChangeAt(ctx, animalID)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("latest change: %w", err)
	}
	if latest.After(changedAt) {
		changedAt = latest
	}

	rec := ChangeRecord{
		ID:        h.newID(),
		AnimalID:  animalID,
		Field:     in.Field,
		OldValue:  in.OldValue,
		NewValue:  in.NewValue,
		Reason:    strings.TrimSpace(in.Reason),
		ChangedBy: optional(in.ActorID),
		ChangedAt: changedAt,
	}

	stored, err := h.store.AppendHistory(ctx, rec)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("append history: %w", err)
	}
	return stored, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func valueOf[T ~string](v T) *string {
	s := string(v)
	return &s
}
