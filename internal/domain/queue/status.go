package queue

import (
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

// Legal transitions. Completed and cancelled are terminal.
var transitions = map[string][]string{
	models.QueueCheckedIn: {models.QueueArrived, models.QueueCancelled},
	models.QueueArrived:   {models.QueueInService, models.QueueCancelled},
	models.QueueInService: {models.QueueCompleted},
	models.QueueCompleted: {},
	models.QueueCancelled: {},
}

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

// IsActive marks entries that still hold a queue position.
func IsActive(status string) bool {
	return !IsTerminal(status)
}

func IsTerminal(status string) bool {
	return status == models.QueueCompleted || status == models.QueueCancelled
}

// IsWaiting marks entries that may still be repositioned: service has not
// started yet.
func IsWaiting(status string) bool {
	return status == models.QueueCheckedIn || status == models.QueueArrived
}

// CanReassign guards employee/service changes, which are only allowed before
// service starts.
func CanReassign(status string) error {
	if !IsWaiting(status) {
		return httperr.StateConflict("entry_past_reassignment")
	}
	return nil
}
