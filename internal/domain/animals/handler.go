package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shelter-operations/internal/domain/catalog"
	"shelter-operations/internal/middleware"
	"shelter-operations/internal/platform/i18n"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
)

// RouteOptions agrupa las dependencias HTTP opcionales del módulo.
type RouteOptions struct {
	Labels i18n.LabelResolver

	// WriteMiddleware se aplica solo a POST/PATCH (rate limit).
	WriteMiddleware []func(http.Handler) http.Handler
}

func RegisterRoutes(r chi.Router, svc *Service, opts RouteOptions) {
	labels := opts.Labels
	if labels == nil {
		labels = i18n.NewResolver("en")
	}

	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", listAnimalsHandler(svc, labels))
		ar.Get("/{animalID}", getAnimalHandler(svc, labels))
		ar.Get("/{animalID}/status-history", listHistoryHandler(svc))

		ar.Group(func(wr chi.Router) {
			wr.Use(opts.WriteMiddleware...)
			wr.Post("/", registerAnimalHandler(svc, labels))
			wr.Patch("/{animalID}", updateLifecycleHandler(svc, labels))
		})
	})

	r.Get("/reports/census", censusHandler(svc))
}

type registerAnimalRequest struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Status       string `json:"status"`        // opcional, default QUARANTINE
	LocationType string `json:"location_type"` // opcional, default FACILITY
	LocationNote string `json:"location_note"`
	Reason       string `json:"reason"`
}

type animalResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Species       string    `json:"species"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	LocationType  string    `json:"location_type"`
	LocationLabel string    `json:"location_label"`
	LocationNote  string    `json:"location_note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type updateLifecycleRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Status       *string `json:"status"`
	LocationType *string `json:"location_type"`
	LocationNote *string `json:"location_note"`
	Reason       string  `json:"reason"`
	Confirm      bool    `json:"confirm"`
}

type confirmationResponse struct {
	RequiresConfirmation bool   `json:"requires_confirmation"`
	WarningCode          string `json:"warning_code"`
	Message              string `json:"message"`
	FromStatus           string `json:"from_status"`
	ToStatus             string `json:"to_status"`
}

type historyItemResponse struct {
	ID        string    `json:"id"`
	Field     string    `json:"field"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	Reason    string    `json:"reason"`
	ChangedBy *string   `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type historyPageResponse struct {
	Items  []historyItemResponse `json:"items"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Total  int                   `json:"total"`
}

type censusResponse struct {
	ByStatus         map[string]int `json:"by_status"`
	Total            int            `json:"total"`
	InResidence      int            `json:"in_residence"`
	ReadyForAdoption int            `json:"ready_for_adoption"`
}

// registerAnimalHandler godoc
// @Summary Alta de animal
// @Description Crea el animal y escribe el primer registro de historial (old_value null).
// @Tags animals
// @Accept json
// @Produce json
// @Param body body registerAnimalRequest true "Animal"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / name is required"
// @Failure 401 {string} string "unauthorized"
// @Failure 422 {string} string "invalid status / location_type"
// @Router /animals [post]
func registerAnimalHandler(svc *Service, labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := RegisterInput{
			Name:         req.Name,
			Species:      req.Species,
			LocationNote: req.LocationNote,
			Reason:       req.Reason,
			ActorID:      claims.UserID,
		}
		if strings.TrimSpace(req.Status) != "" {
			st, err := catalog.ParseStatus(req.Status)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			in.Status = st
		}
		if strings.TrimSpace(req.LocationType) != "" {
			loc, err := catalog.ParseLocation(req.LocationType)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			in.LocationType = loc
		}

		a, err := svc.Register(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a, labels, matchLocale(labels, r)))
	}
}

// listAnimalsHandler godoc
// @Summary Listado de animales
// @Description Filtra por estado exacto (`status`) o por clasificación del catálogo (`scope=active|adoptable`).
// @Tags animals
// @Produce json
// @Param status query string false "Estado exacto"
// @Param scope query string false "active | adoptable"
// @Param limit query int false "1..200 (default 50)"
// @Param offset query int false "offset"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 422 {string} string "invalid status / scope"
// @Router /animals [get]
func listAnimalsHandler(svc *Service, labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		filter := ListFilter{
			Limit:  atoiDefault(q.Get("limit"), DefaultPageLimit),
			Offset: atoiDefault(q.Get("offset"), 0),
		}

		switch scope := strings.ToLower(strings.TrimSpace(q.Get("scope"))); scope {
		case "":
		case "active":
			filter.Statuses = catalog.ActiveStatuses()
		case "adoptable":
			filter.Statuses = catalog.AdoptableStatuses()
		default:
			http.Error(w, "scope must be active or adoptable", http.StatusUnprocessableEntity)
			return
		}

		if raw := strings.TrimSpace(q.Get("status")); raw != "" {
			st, err := catalog.ParseStatus(raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			filter.Statuses = []catalog.Status{st}
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		tag := matchLocale(labels, r)
		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a, labels, tag))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary Detalle de animal
// @Tags animals
// @Produce json
// @Param animalID path string true "Animal ID"
// @Success 200 {object} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service, labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(a, labels, matchLocale(labels, r)))
	}
}

// updateLifecycleHandler godoc
// @Summary Cambiar estado y/o ubicación
// @Description Salir de ADOPTED o DECEASED requiere `confirm: true`; sin él responde 409 y no aplica ningún campo.
// @Description Reenviar el estado actual es un no-op (200, sin historial).
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "Animal ID"
// @Param body body updateLifecycleRequest true "Cambios (campos omitidos no se tocan)"
// @Success 200 {object} animalResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {object} confirmationResponse
// @Failure 422 {string} string "invalid status / location_type"
// @Router /animals/{animalID} [patch]
func updateLifecycleHandler(svc *Service, labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateLifecycleRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// Los valores del catálogo se validan antes de llegar al servicio.
		upd := UpdateRequest{
			LocationNote: req.LocationNote,
			Reason:       req.Reason,
			Confirm:      req.Confirm,
			ActorID:      claims.UserID,
		}
		if req.Status != nil {
			st, err := catalog.ParseStatus(*req.Status)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			upd.Status = &st
		}
		if req.LocationType != nil {
			loc, err := catalog.ParseLocation(*req.LocationType)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			upd.LocationType = &loc
		}

		res, err := svc.UpdateLifecycle(r.Context(), chi.URLParam(r, "animalID"), upd)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		tag := matchLocale(labels, r)
		switch v := res.(type) {
		case Applied:
			writeJSON(w, http.StatusOK, toAnimalResponse(v.Animal, labels, tag))
		case ConfirmationRequired:
			writeJSON(w, http.StatusConflict, confirmationResponse{
				RequiresConfirmation: true,
				WarningCode:          string(v.WarningCode),
				Message:              labels.WarningMessage(tag, string(v.WarningCode), string(v.FromStatus)),
				FromStatus:           string(v.FromStatus),
				ToStatus:             string(v.ToStatus),
			})
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// listHistoryHandler godoc
// @Summary Historial de estado y ubicación
// @Description Devuelve el historial del más viejo al más nuevo, paginado.
// @Tags animals
// @Produce json
// @Param animalID path string true "Animal ID"
// @Param limit query int false "1..200 (default 50)"
// @Param offset query int false "offset"
// @Success 200 {object} historyPageResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID}/status-history [get]
func listHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		page := Page{
			Limit:  atoiDefault(q.Get("limit"), DefaultPageLimit),
			Offset: atoiDefault(q.Get("offset"), 0),
		}.Normalize()

		items, total, err := svc.History(r.Context(), chi.URLParam(r, "animalID"), page)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := historyPageResponse{
			Items:  make([]historyItemResponse, 0, len(items)),
			Limit:  page.Limit,
			Offset: page.Offset,
			Total:  total,
		}
		for _, h := range items {
			out.Items = append(out.Items, historyItemResponse{
				ID:        h.ID,
				Field:     string(h.Field),
				OldValue:  h.OldValue,
				NewValue:  h.NewValue,
				Reason:    h.Reason,
				ChangedBy: h.ChangedBy,
				ChangedAt: h.ChangedAt,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// censusHandler godoc
// @Summary Censo por estado
// @Tags reports
// @Produce json
// @Success 200 {object} censusResponse
// @Failure 401 {string} string "unauthorized"
// @Router /reports/census [get]
func censusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.Census(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := censusResponse{
			ByStatus:         make(map[string]int, len(c.ByStatus)),
			Total:            c.Total,
			InResidence:      c.InResidence,
			ReadyForAdoption: c.ReadyForAdoption,
		}
		for st, n := range c.ByStatus {
			out.ByStatus[string(st)] = n
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidValue):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func matchLocale(labels i18n.LabelResolver, r *http.Request) language.Tag {
	return labels.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func toAnimalResponse(a Animal, labels i18n.LabelResolver, tag language.Tag) animalResponse {
	return animalResponse{
		ID:            a.ID,
		Name:          a.Name,
		Species:       a.Species,
		Status:        string(a.Status),
		StatusLabel:   labels.StatusLabel(tag, string(a.Status)),
		LocationType:  string(a.LocationType),
		LocationLabel: labels.LocationLabel(tag, string(a.LocationType)),
		LocationNote:  a.LocationNote,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func atoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
