package appointment

import (
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

// Legal transitions. Completed and cancelled are terminal.
var transitions = map[string][]string{
	models.AppointmentScheduled: {models.AppointmentCompleted, models.AppointmentCancelled},
	models.AppointmentCompleted: {},
	models.AppointmentCancelled: {},
}

// CanTransition rejects illegal status changes at the boundary instead of
// deep inside handlers.
func CanTransition(from, to string) error {
	allowed, ok := transitions[from]
	if !ok {
		return httperr.Validation("unknown_status")
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return httperr.StateConflict("invalid_status_transition")
}

func CanCancel(current string) error {
	return CanTransition(current, models.AppointmentCancelled)
}

func CanComplete(current string) error {
	return CanTransition(current, models.AppointmentCompleted)
}

// CanEdit reports whether time/employee/service changes are still allowed.
func CanEdit(current string) error {
	if current != models.AppointmentScheduled {
		return httperr.StateConflict("invalid_state")
	}
	return nil
}
