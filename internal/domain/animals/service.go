package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shelter-operations/internal/domain/catalog"
	"shelter-operations/internal/platform/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Observer recibe los resultados del lifecycle (métricas).
type Observer interface {
	UpdateOutcome(outcome string)
	Transition(field, from, to string)
}

type nopObserver struct{}

func (nopObserver) UpdateOutcome(string)              {}
func (nopObserver) Transition(string, string, string) {}

const (
	OutcomeApplied              = "applied"
	OutcomeNoop                 = "noop"
	OutcomeConfirmationRequired = "confirmation_required"
	OutcomeNotFound             = "not_found"
	OutcomeInvalid              = "invalid"
	OutcomeError                = "error"
)

// Service es el único componente que muta status/location_type.
type Service struct {
	repo   Repository
	now    func() time.Time
	log    logger.Logger
	obs    Observer
	tracer trace.Tracer
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.obs = o
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		log:    logger.Nop(),
		obs:    nopObserver{},
		tracer: otel.Tracer("shelter-operations/animals"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Name         string
	Species      string
	Status       catalog.Status   // vacío = QUARANTINE
	LocationType catalog.Location // vacío = FACILITY
	LocationNote string
	Reason       string
	ActorID      string
}

// Register da de alta un animal y escribe su primer registro de historial
// (old_value nil, new_value = estado inicial) en la misma transacción.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Animal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Animal{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = catalog.StatusQuarantine
	}
	if !status.Valid() {
		return Animal{}, fmt.Errorf("%w: status %q", ErrInvalidValue, status)
	}
	location := in.LocationType
	if location == "" {
		location = catalog.LocationFacility
	}
	if !location.Valid() {
		return Animal{}, fmt.Errorf("%w: location_type %q", ErrInvalidValue, location)
	}

	now := s.now().UTC()
	a := Animal{
		ID:           uuid.NewString(),
		Name:         name,
		Species:      strings.TrimSpace(in.Species),
		Status:       status,
		LocationType: location,
		LocationNote: strings.TrimSpace(in.LocationNote),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.Create(ctx, a); err != nil {
			return err
		}
		_, err := NewHistoryRecorder(tx, s.now).Append(ctx, AppendInput{
			AnimalID: a.ID,
			Field:    FieldStatus,
			OldValue: nil,
			NewValue: valueOf(status),
			Reason:   in.Reason,
			ActorID:  in.ActorID,
		})
		return err
	})
	if err != nil {
		s.log.Error("animal registration failed", map[string]any{"error": err.Error()})
		return Animal{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("animal registered", map[string]any{
		"animal_id":     a.ID,
		"status":        string(a.Status),
		"location_type": string(a.LocationType),
		"actor_id":      in.ActorID,
	})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, translateErr(err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Animal, error) {
	page := Page{Limit: filter.Limit, Offset: filter.Offset}.Normalize()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translateErr(err)
	}
	return items, nil
}

// History devuelve el historial paginado, del más viejo al más nuevo.
func (s *Service) History(ctx context.Context, animalID string, page Page) ([]ChangeRecord, int, error) {
	if _, err := s.GetByID(ctx, animalID); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.ListHistory(ctx, strings.TrimSpace(animalID), page.Normalize())
	if err != nil {
		return nil, 0, translateErr(err)
	}
	return items, total, nil
}

// Census cuenta animales por estado usando las clasificaciones del catálogo.
func (s *Service) Census(ctx context.Context) (Census, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Census{}, translateErr(err)
	}

	c := Census{ByStatus: make(map[catalog.Status]int, len(catalog.Statuses()))}
	for _, st := range catalog.Statuses() {
		n := counts[st]
		c.ByStatus[st] = n
		c.Total += n
		if st.Active() {
			c.InResidence += n
		}
		if st.Adoptable() {
			c.ReadyForAdoption += n
		}
	}
	return c, nil
}

// UpdateRequest: nil = no tocar el campo.
type UpdateRequest struct {
	Status       *catalog.Status
	LocationType *catalog.Location
	LocationNote *string
	Reason       string
	Confirm      bool
	ActorID      string
}

func (r UpdateRequest) validate() error {
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidValue, *r.Status)
	}
	if r.LocationType != nil && !r.LocationType.Valid() {
		return fmt.Errorf("%w: location_type %q", ErrInvalidValue, *r.LocationType)
	}
	return nil
}

type fieldChange struct {
	field    Field
	from, to string
	decision Decision
}

// plan evalúa cada campo pedido contra el valor persistido.
func plan(current Animal, req UpdateRequest) []fieldChange {
	changes := make([]fieldChange, 0, 2)
	if req.Status != nil {
		changes = append(changes, fieldChange{
			field:    FieldStatus,
			from:     string(current.Status),
			to:       string(*req.Status),
			decision: EvaluateStatus(current.Status, *req.Status),
		})
	}
	if req.LocationType != nil {
		changes = append(changes, fieldChange{
			field:    FieldLocationType,
			from:     string(current.LocationType),
			to:       string(*req.LocationType),
			decision: EvaluateLocation(current.LocationType, *req.LocationType),
		})
	}
	return changes
}

// UpdateLifecycle aplica un cambio de estado y/o ubicación.
//
// Es todo o nada: si algún campo requiere confirmación y no vino Confirm,
// no se aplica ningún campo (tampoco la ubicación ni la nota) y se devuelve
// ConfirmationRequired. Reenviar el mismo estado es un no-op sin historial.
func (s *Service) UpdateLifecycle(ctx context.Context, animalID string, req UpdateRequest) (UpdateResult, error) {
	ctx, span := s.tracer.Start(ctx, "animals.UpdateLifecycle", trace.WithAttributes(
		attribute.String("animal.id", animalID),
		attribute.Bool("lifecycle.confirm", req.Confirm),
	))
	defer span.End()

	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		s.obs.UpdateOutcome(OutcomeNotFound)
		return nil, ErrNotFound
	}
	if err := req.validate(); err != nil {
		s.obs.UpdateOutcome(OutcomeInvalid)
		return nil, err
	}

	var (
		result  UpdateResult
		outcome string
	)

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		result, outcome = nil, ""

		current, err := tx.GetForUpdate(ctx, animalID)
		if err != nil {
			return err
		}

		changes := plan(current, req)
		for _, c := range changes {
			if c.decision == RequiresConfirmation && !req.Confirm {
				// Nada se escribió: el commit de la tx vacía solo libera el lock.
				result = newConfirmationRequired(current.Status, *req.Status)
				outcome = OutcomeConfirmationRequired
				return nil
			}
		}

		updated := current
		recorder := NewHistoryRecorder(tx, s.now)
		applied := make([]ChangeRecord, 0, len(changes))

		for _, c := range changes {
			if c.decision == NoChange {
				continue
			}
			switch c.field {
			case FieldStatus:
				updated.Status = catalog.Status(c.to)
			case FieldLocationType:
				updated.LocationType = catalog.Location(c.to)
			}

			rec, err := recorder.Append(ctx, AppendInput{
				AnimalID: animalID,
				Field:    c.field,
				OldValue: valueOf(c.from),
				NewValue: valueOf(c.to),
				Reason:   req.Reason,
				ActorID:  req.ActorID,
			})
			if err != nil {
				return err
			}
			applied = append(applied, rec)
		}

		noteChanged := false
		if req.LocationNote != nil {
			note := strings.TrimSpace(*req.LocationNote)
			if note != current.LocationNote {
				updated.LocationNote = note
				noteChanged = true
			}
		}

		if len(applied) == 0 && !noteChanged {
			result = Applied{Animal: current}
			outcome = OutcomeNoop
			return nil
		}

		updated.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, updated); err != nil {
			return err
		}

		result = Applied{Animal: updated, Changes: applied}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		err = translateErr(err)
		if errors.Is(err, ErrNotFound) {
			s.obs.UpdateOutcome(OutcomeNotFound)
			return nil, err
		}

		s.obs.UpdateOutcome(OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lifecycle update failed")
		s.log.Error("lifecycle update failed", map[string]any{
			"animal_id": animalID,
			"error":     err.Error(),
		})
		return nil, err
	}

	s.obs.UpdateOutcome(outcome)
	span.SetAttributes(attribute.String("lifecycle.outcome", outcome))

	switch res := result.(type) {
	case ConfirmationRequired:
		// Resultado esperado, no un error.
		s.log.Info("lifecycle update requires confirmation", map[string]any{
			"animal_id":    animalID,
			"warning_code": string(res.WarningCode),
			"message":      res.Message,
			"from_status":  string(res.FromStatus),
			"to_status":    string(res.ToStatus),
			"actor_id":     req.ActorID,
		})
	case Applied:
		for _, rec := range res.Changes {
			s.obs.Transition(string(rec.Field), deref(rec.OldValue), deref(rec.NewValue))
			s.log.Info("lifecycle field changed", map[string]any{
				"animal_id": animalID,
				"field":     string(rec.Field),
				"old_value": deref(rec.OldValue),
				"new_value": deref(rec.NewValue),
				"confirmed": req.Confirm,
				"actor_id":  req.ActorID,
			})
		}
	}

	return result, nil
}

// translateErr deja pasar ErrNotFound y envuelve el resto como ErrPersistence.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidValue), errors.Is(err, ErrPersistence):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
