package appointment

import (
	"context"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/scheduler"
	"github.com/queuelinehq/queueline/internal/timezone"
)

// UpdateAppointmentStatus handles the manual terminal transitions. Whichever
// way an appointment ends, its pending timers are disarmed and, when service
// had already begun, the employee is released back to the queue.
type UpdateAppointmentStatus struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	lifecycle     *scheduler.Scheduler
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	lifecycle *scheduler.Scheduler,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:          repo,
		businessLocks: businessLocks,
		lifecycle:     lifecycle,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	businessID uint,
	appointmentID uint,
	newStatus string,
) (*models.Appointment, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	// Same lock the deferred timers fire under, so a manual transition and a
	// firing timer never interleave between status check and save. Released
	// before ReleaseEmployee, which takes it again.
	uc.businessLocks.Lock(businessID)

	ap, err := uc.repo.GetAppointment(ctx, businessID, appointmentID)
	if err != nil {
		uc.businessLocks.Unlock(businessID)
		return nil, err
	}

	now := timezone.NowIn(business.Timezone)
	wasStarted := ap.ActualStartTime != nil

	switch newStatus {
	case models.AppointmentCompleted:
		err = domain.Complete(ap, now)
	case models.AppointmentCancelled:
		err = domain.Cancel(ap, now)
	default:
		err = httperr.Validation("unknown_status")
	}
	if err != nil {
		uc.businessLocks.Unlock(businessID)
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		uc.businessLocks.Unlock(businessID)
		return nil, err
	}

	uc.lifecycle.Disarm(ap.ID)
	uc.businessLocks.Unlock(businessID)

	// A completed appointment always frees its employee; a cancellation only
	// does so when the start timer had already fired.
	if newStatus == models.AppointmentCompleted || wasStarted {
		uc.lifecycle.ReleaseEmployee(ctx, businessID, ap.EmployeeID)
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		Action:     "appointment_" + newStatus,
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bc.Refresh(ctx, businessID)

	return ap, nil
}
