package animals

import (
	"fmt"

	"shelter-operations/internal/domain/catalog"
)

// UpdateResult es Applied o ConfirmationRequired, nunca ambos.
// Los callers hacen type switch sobre el valor concreto.
type UpdateResult interface {
	isUpdateResult()
}

// Applied: el cambio quedó persistido (o no había nada que cambiar).
type Applied struct {
	Animal  Animal
	Changes []ChangeRecord
}

// ConfirmationRequired: no se aplicó nada; reenviar con Confirm=true.
type ConfirmationRequired struct {
	WarningCode WarningCode
	Message     string
	FromStatus  catalog.Status
	ToStatus    catalog.Status
}

func (Applied) isUpdateResult()              {}
func (ConfirmationRequired) isUpdateResult() {}

type WarningCode string

const (
	WarningLeaveAdopted  WarningCode = "LEAVE_ADOPTED"
	WarningLeaveDeceased WarningCode = "LEAVE_DECEASED"
)

func warningFor(from catalog.Status) WarningCode {
	if from == catalog.StatusDeceased {
		return WarningLeaveDeceased
	}
	return WarningLeaveAdopted
}

func newConfirmationRequired(from, to catalog.Status) ConfirmationRequired {
	return ConfirmationRequired{
		WarningCode: warningFor(from),
		Message:     fmt.Sprintf("animal is currently %s; leaving this status requires confirmation", from),
		FromStatus:  from,
		ToStatus:    to,
	}
}
