package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shelter-operations/internal/router"
)

func TestHTTP_EndToEnd_LifecycleWithConfirmation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	staffID := "staff-1"

	// 1) Alta: QUARANTINE / FACILITY, un registro de historial
	animalID := createAnimal(t, ts.URL, staffID, map[string]any{
		"name":    "Milo",
		"species": "dog",
	})
	{
		page := getHistory(t, ts.URL, staffID, animalID)
		if page.Total != 1 || page.Items[0].OldValue != nil || deref(page.Items[0].NewValue) != "QUARANTINE" {
			t.Fatalf("unexpected creation history: %+v", page)
		}
	}

	// 2) QUARANTINE -> IN_CARE directo
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID, staffID, map[string]any{
			"status": "IN_CARE",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch status, got %d body=%s", st, string(body))
		}
		var a animalResp
		_ = json.Unmarshal(body, &a)
		if a.Status != "IN_CARE" {
			t.Fatalf("expected IN_CARE, got %q", a.Status)
		}
	}

	// 3) Reenviar el mismo estado: 200 sin historial nuevo
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID, staffID, map[string]any{
			"status": "in_care",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 idempotent patch, got %d body=%s", st, string(body))
		}
		if page := getHistory(t, ts.URL, staffID, animalID); page.Total != 2 {
			t.Fatalf("expected 2 history rows after noop, got %d", page.Total)
		}
	}

	// 4) Adopción
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID, staffID, map[string]any{
			"status":        "ADOPTED",
			"location_type": "ADOPTER_HOME",
			"reason":        "adopted by the Pérez family",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 adopt, got %d body=%s", st, string(body))
		}
	}

	// 5) Salir de ADOPTED sin confirm: 409 y nada cambia
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID, staffID, map[string]any{
			"status":        "IN_CARE",
			"location_type": "FACILITY",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 leaving ADOPTED, got %d body=%s", st, string(body))
		}
		var cr struct {
			RequiresConfirmation bool   `json:"requires_confirmation"`
			WarningCode          string `json:"warning_code"`
			Message              string `json:"message"`
			FromStatus           string `json:"from_status"`
			ToStatus             string `json:"to_status"`
		}
		_ = json.Unmarshal(body, &cr)
		if !cr.RequiresConfirmation || cr.WarningCode != "LEAVE_ADOPTED" || cr.FromStatus != "ADOPTED" || cr.ToStatus != "IN_CARE" {
			t.Fatalf("unexpected confirmation payload: %s", string(body))
		}
		if cr.Message == "" {
			t.Fatalf("expected localized message")
		}

		a := getAnimal(t, ts.URL, staffID, animalID)
		if a.Status != "ADOPTED" || a.LocationType != "ADOPTER_HOME" {
			t.Fatalf("nothing should change without confirm, got %+v", a)
		}
		if page := getHistory(t, ts.URL, staffID, animalID); page.Total != 4 {
			t.Fatalf("expected 4 history rows, got %d", page.Total)
		}
	}

	// 6) Con confirm: se aplica y queda en el historial
	{
		st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID, staffID, map[string]any{
			"status":  "IN_CARE",
			"confirm": true,
			"reason":  "adoption returned",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 confirmed patch, got %d body=%s", st, string(body))
		}

		page := getHistory(t, ts.URL, staffID, animalID)
		last := page.Items[len(page.Items)-1]
		if deref(last.OldValue) != "ADOPTED" || deref(last.NewValue) != "IN_CARE" || last.Field != "status" {
			t.Fatalf("unexpected last history row: %+v", last)
		}
		if deref(last.ChangedBy) != staffID || last.Reason != "adoption returned" {
			t.Fatalf("expected actor and reason recorded, got %+v", last)
		}
		for i := 1; i < len(page.Items); i++ {
			if page.Items[i].ChangedAt.Before(page.Items[i-1].ChangedAt) {
				t.Fatalf("history not ordered oldest-first")
			}
		}
	}
}

func TestHTTP_Errors(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	animalID := createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "Luna"})

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
	}{
		{"no identity", "PATCH", "/animals/" + animalID, "", map[string]any{"status": "IN_CARE"}, http.StatusUnauthorized},
		{"unknown status", "PATCH", "/animals/" + animalID, "staff-1", map[string]any{"status": "RETURNED"}, http.StatusUnprocessableEntity},
		{"unknown location", "PATCH", "/animals/" + animalID, "staff-1", map[string]any{"location_type": "KENNEL"}, http.StatusUnprocessableEntity},
		{"unknown field", "PATCH", "/animals/" + animalID, "staff-1", map[string]any{"colour": "black"}, http.StatusBadRequest},
		{"missing animal", "PATCH", "/animals/does-not-exist", "staff-1", map[string]any{"status": "IN_CARE"}, http.StatusNotFound},
		{"missing history", "GET", "/animals/does-not-exist/status-history", "staff-1", nil, http.StatusNotFound},
		{"register without name", "POST", "/animals", "staff-1", map[string]any{"species": "cat"}, http.StatusBadRequest},
		{"register bad status", "POST", "/animals", "staff-1", map[string]any{"name": "Rex", "status": "LOST"}, http.StatusUnprocessableEntity},
		{"bad scope", "GET", "/animals?scope=everything", "staff-1", nil, http.StatusUnprocessableEntity},
		{"census needs identity", "GET", "/reports/census", "", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.user, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}
}

func TestHTTP_DeceasedBundleRequiresConfirmation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	animalID := createAnimal(t, ts.URL, "staff-1", map[string]any{
		"name":   "Rex",
		"status": "DECEASED",
	})

	st, body := doReq(t, ts.URL, "PATCH", "/animals/"+animalID+"?lang=es", "staff-1", map[string]any{
		"status":        "TRIAL",
		"location_type": "FOSTER_HOME",
		"location_note": "calle 5",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", st, string(body))
	}
	if !strings.Contains(string(body), "LEAVE_DECEASED") || !strings.Contains(string(body), "Fallecido") {
		t.Fatalf("expected spanish LEAVE_DECEASED message, got %s", string(body))
	}

	a := getAnimal(t, ts.URL, "staff-1", animalID)
	if a.Status != "DECEASED" || a.LocationType != "FACILITY" || a.LocationNote != "" {
		t.Fatalf("bundle must not be partially applied: %+v", a)
	}
}

func TestHTTP_MetaAndCensus(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	{
		st, body := doReq(t, ts.URL, "GET", "/meta/statuses?lang=es", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 meta statuses, got %d", st)
		}
		var entries []struct {
			Code     string `json:"code"`
			Label    string `json:"label"`
			Terminal bool   `json:"terminal"`
		}
		_ = json.Unmarshal(body, &entries)
		if len(entries) != 5 || entries[0].Code != "QUARANTINE" || entries[0].Label != "Cuarentena" {
			t.Fatalf("unexpected statuses: %s", string(body))
		}
		if !entries[3].Terminal || entries[2].Terminal {
			t.Fatalf("unexpected terminal flags: %s", string(body))
		}
	}

	createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "A"})
	createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "B", "status": "IN_CARE"})
	createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "C", "status": "ADOPTED", "location_type": "ADOPTER_HOME"})

	{
		st, body := doReq(t, ts.URL, "GET", "/reports/census", "staff-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 census, got %d", st)
		}
		var c struct {
			ByStatus         map[string]int `json:"by_status"`
			Total            int            `json:"total"`
			InResidence      int            `json:"in_residence"`
			ReadyForAdoption int            `json:"ready_for_adoption"`
		}
		_ = json.Unmarshal(body, &c)
		if c.Total != 3 || c.InResidence != 2 || c.ReadyForAdoption != 1 || c.ByStatus["ADOPTED"] != 1 {
			t.Fatalf("unexpected census: %s", string(body))
		}
	}

	{
		st, body := doReq(t, ts.URL, "GET", "/animals?scope=active", "staff-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		var items []animalResp
		_ = json.Unmarshal(body, &items)
		if len(items) != 2 {
			t.Fatalf("expected 2 active animals, got %d", len(items))
		}
	}

	{
		st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), "shelter_http_requests_total") {
			t.Fatalf("expected metrics exposition, got %d", st)
		}
	}

	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
}

func TestHTTP_WriteRateLimit(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{RateLimitWrites: 2}))
	defer ts.Close()

	createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "A"})
	createAnimal(t, ts.URL, "staff-1", map[string]any{"name": "B"})

	st, _ := doReq(t, ts.URL, "POST", "/animals", "staff-1", map[string]any{"name": "C"})
	if st != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", st)
	}

	// Lecturas no cuentan y otro usuario tiene su propio cupo.
	if st, _ := doReq(t, ts.URL, "GET", "/animals", "staff-1", nil); st != http.StatusOK {
		t.Fatalf("expected reads to pass, got %d", st)
	}
	createAnimal(t, ts.URL, "staff-2", map[string]any{"name": "D"})
}

func TestHTTP_HistoryItemsExposeAllFields(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// Alta sin reason: la clave igual debe venir en el item.
	animalID := createAnimal(t, ts.URL, "u1", map[string]any{"name": "Mimi"})

	st, body := doReq(t, ts.URL, "GET", "/animals/"+animalID+"/status-history", "u1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
	}

	var raw struct {
		Items []map[string]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, string(body))
	}
	if len(raw.Items) != 1 {
		t.Fatalf("expected 1 history item, got %d body=%s", len(raw.Items), string(body))
	}
	for _, key := range []string{"field", "old_value", "new_value", "reason", "changed_by", "changed_at"} {
		if _, ok := raw.Items[0][key]; !ok {
			t.Fatalf("history item missing %q: %s", key, string(body))
		}
	}
	if string(raw.Items[0]["reason"]) != `""` {
		t.Fatalf("expected empty reason, got %s", raw.Items[0]["reason"])
	}
}

// -------------------------
// Helpers
// -------------------------

type animalResp struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	LocationType string `json:"location_type"`
	LocationNote string `json:"location_note"`
}

type historyItem struct {
	Field     string    `json:"field"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	Reason    string    `json:"reason"`
	ChangedBy *string   `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type historyPage struct {
	Items  []historyItem `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Total  int           `json:"total"`
}

func createAnimal(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}

	var a animalResp
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, string(body))
	}
	if a.ID == "" {
		t.Fatalf("missing animal id in response: %s", string(body))
	}
	return a.ID
}

func getAnimal(t *testing.T, baseURL, userID, animalID string) animalResp {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animals/"+animalID, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get animal, got %d body=%s", st, string(body))
	}
	var a animalResp
	_ = json.Unmarshal(body, &a)
	return a
}

func getHistory(t *testing.T, baseURL, userID, animalID string) historyPage {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animals/"+animalID+"/status-history", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
	}
	var p historyPage
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, string(body))
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
