package animals

import "shelter-operations/internal/domain/catalog"

// Decision es el resultado de evaluar un cambio de un campo de lifecycle.
type Decision int

const (
	NoChange Decision = iota
	AllowedDirect
	RequiresConfirmation
)

func (d Decision) String() string {
	switch d {
	case NoChange:
		return "no_change"
	case AllowedDirect:
		return "allowed_direct"
	case RequiresConfirmation:
		return "requires_confirmation"
	default:
		return "unknown"
	}
}

// EvaluateStatus decide un cambio de estado. Es total: cualquier par
// (from, to) tiene exactamente una decisión. Los códigos inválidos se
// rechazan antes, al parsear contra el catálogo.
//
// Desde un estado no terminal se llega a cualquier otro sin confirmación.
// Salir de ADOPTED o DECEASED siempre requiere confirmación.
func EvaluateStatus(from, to catalog.Status) Decision {
	if from == to {
		return NoChange
	}
	if from.Terminal() {
		return RequiresConfirmation
	}
	return AllowedDirect
}

// EvaluateLocation: las ubicaciones no tienen estados terminales.
func EvaluateLocation(from, to catalog.Location) Decision {
	if from == to {
		return NoChange
	}
	return AllowedDirect
}
