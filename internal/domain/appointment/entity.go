package appointment

import (
	"time"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(ap.Status); err != nil {
		return err
	}

	ap.Status = models.AppointmentCancelled
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(ap.Status); err != nil {
		return err
	}

	ap.Status = models.AppointmentCompleted
	ap.ActualEndTime = &now
	return nil
}

// ValidateIdentity enforces the identity invariant: exactly one of a
// registered user or a bare name+phone pair.
func ValidateIdentity(userID *uint, fullName, phoneNumber string) error {
	hasUser := userID != nil && *userID != 0
	hasContact := fullName != "" && phoneNumber != ""

	if hasUser == hasContact {
		return httperr.Validation("missing_or_ambiguous_customer_identity")
	}
	return nil
}
