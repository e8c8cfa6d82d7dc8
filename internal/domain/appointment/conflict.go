package appointment

import (
	"time"

	"github.com/queuelinehq/queueline/internal/domain/schedule"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

// ConflictInput is the snapshot a conflict check runs against. Working holds
// the employee's expanded working intervals covering the candidate range;
// Existing holds their appointments in that range.
type ConflictInput struct {
	Business  *models.Business
	Working   []schedule.Interval
	Existing  []models.Appointment
	Start     time.Time
	End       time.Time
	ExcludeID uint
}

// CheckConflict returns a distinct error per failure so callers can tell the
// customer whether the shop was closed or the slot was taken.
func CheckConflict(in ConflictInput) error {
	if !in.End.After(in.Start) {
		return httperr.Validation("invalid_time_range")
	}

	if !in.Business.Open24Hours() {
		if !schedule.ContainsRange(in.Working, in.Start, in.End) {
			return httperr.OutsideWorkingHours()
		}
	}

	for _, ap := range in.Existing {
		if ap.ID == in.ExcludeID && in.ExcludeID != 0 {
			continue
		}
		if ap.Status != models.AppointmentScheduled {
			continue
		}
		// Half-open overlap: back-to-back appointments are fine.
		if ap.AppointmentTime.Before(in.End) && in.Start.Before(ap.EndTime) {
			return httperr.TimeConflict()
		}
	}

	return nil
}
