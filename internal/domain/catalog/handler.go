package catalog

import (
	"encoding/json"
	"net/http"

	"shelter-operations/internal/platform/i18n"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, labels i18n.LabelResolver) {
	r.Route("/meta", func(mr chi.Router) {
		mr.Get("/statuses", listStatusesHandler(labels))
		mr.Get("/location-types", listLocationsHandler(labels))
	})
}

// catalogEntry es un valor del catálogo con su etiqueta localizada.
type catalogEntry struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Terminal bool   `json:"terminal"`
}

// listStatusesHandler godoc
// @Summary Catálogo de estados
// @Description Devuelve los estados válidos en orden de presentación, con etiqueta localizada (`lang` o `Accept-Language`) y la marca `terminal`.
// @Tags meta
// @Produce json
// @Param lang query string false "Locale (en, es)"
// @Success 200 {array} catalogEntry
// @Router /meta/statuses [get]
func listStatusesHandler(labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := labels.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

		out := make([]catalogEntry, 0, len(statusTable))
		for _, s := range Statuses() {
			out = append(out, catalogEntry{
				Code:     string(s),
				Label:    labels.StatusLabel(tag, string(s)),
				Terminal: s.Terminal(),
			})
		}

		w.Header().Set("Content-Language", tag.String())
		writeJSON(w, http.StatusOK, out)
	}
}

// listLocationsHandler godoc
// @Summary Catálogo de ubicaciones
// @Description Devuelve los tipos de ubicación válidos con etiqueta localizada. Las ubicaciones nunca son terminales.
// @Tags meta
// @Produce json
// @Param lang query string false "Locale (en, es)"
// @Success 200 {array} catalogEntry
// @Router /meta/location-types [get]
func listLocationsHandler(labels i18n.LabelResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := labels.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

		out := make([]catalogEntry, 0, len(locationTable))
		for _, l := range Locations() {
			out = append(out, catalogEntry{
				Code:  string(l),
				Label: labels.LocationLabel(tag, string(l)),
			})
		}

		w.Header().Set("Content-Language", tag.String())
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
