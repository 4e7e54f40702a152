package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidValue = errors.New("invalid catalog value")
)

// Status es la etapa de cuidado/adopción del animal.
// @Enum QUARANTINE, IN_CARE, TRIAL, ADOPTED, DECEASED
type Status string

const (
	StatusQuarantine Status = "QUARANTINE"
	StatusInCare     Status = "IN_CARE"
	StatusTrial      Status = "TRIAL"
	StatusAdopted    Status = "ADOPTED"
	StatusDeceased   Status = "DECEASED"
)

// Location es dónde reside físicamente el animal.
// @Enum FACILITY, FOSTER_HOME, ADOPTER_HOME
type Location string

const (
	LocationFacility    Location = "FACILITY"
	LocationFosterHome  Location = "FOSTER_HOME"
	LocationAdopterHome Location = "ADOPTER_HOME"
)

type statusInfo struct {
	code      Status
	terminal  bool
	active    bool
	adoptable bool
}

// Orden = orden de presentación en selectores.
var statusTable = []statusInfo{
	{code: StatusQuarantine, active: true},
	{code: StatusInCare, active: true, adoptable: true},
	{code: StatusTrial, active: true, adoptable: true},
	{code: StatusAdopted, terminal: true},
	{code: StatusDeceased, terminal: true},
}

var locationTable = []Location{
	LocationFacility,
	LocationFosterHome,
	LocationAdopterHome,
}

// Statuses devuelve todos los estados en orden de presentación.
func Statuses() []Status {
	out := make([]Status, 0, len(statusTable))
	for _, s := range statusTable {
		out = append(out, s.code)
	}
	return out
}

// Locations devuelve todas las ubicaciones en orden de presentación.
func Locations() []Location {
	out := make([]Location, len(locationTable))
	copy(out, locationTable)
	return out
}

// ActiveStatuses son los estados "en residencia" (cuentan para reportes de ocupación).
func ActiveStatuses() []Status {
	return filterStatuses(func(s statusInfo) bool { return s.active })
}

// AdoptableStatuses son los estados "listo para adopción".
func AdoptableStatuses() []Status {
	return filterStatuses(func(s statusInfo) bool { return s.adoptable })
}

func filterStatuses(keep func(statusInfo) bool) []Status {
	out := make([]Status, 0, len(statusTable))
	for _, s := range statusTable {
		if keep(s) {
			out = append(out, s.code)
		}
	}
	return out
}

func lookupStatus(s Status) (statusInfo, bool) {
	for _, info := range statusTable {
		if info.code == s {
			return info, true
		}
	}
	return statusInfo{}, false
}

func (s Status) Valid() bool {
	_, ok := lookupStatus(s)
	return ok
}

// Terminal indica si salir de este estado requiere confirmación explícita.
func (s Status) Terminal() bool {
	info, ok := lookupStatus(s)
	return ok && info.terminal
}

func (s Status) Active() bool {
	info, ok := lookupStatus(s)
	return ok && info.active
}

func (s Status) Adoptable() bool {
	info, ok := lookupStatus(s)
	return ok && info.adoptable
}

func (s Status) String() string { return string(s) }

func (l Location) Valid() bool {
	for _, v := range locationTable {
		if v == l {
			return true
		}
	}
	return false
}

func (l Location) String() string { return string(l) }

// ParseStatus normaliza (trim + upper) y valida contra el catálogo.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidValue, raw)
	}
	return s, nil
}

// ParseLocation normaliza (trim + upper) y valida contra el catálogo.
func ParseLocation(raw string) (Location, error) {
	l := Location(strings.ToUpper(strings.TrimSpace(raw)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: location_type %q", ErrInvalidValue, raw)
	}
	return l, nil
}
