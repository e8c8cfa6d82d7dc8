package appointment

import (
	"context"
	"time"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/availability"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/scheduler"
)

type UpdateAppointmentInput struct {
	BusinessID    uint
	AppointmentID uint

	// Nil fields are left untouched.
	StartTime  *time.Time
	EmployeeID *uint
	ServiceID  *uint
	Notes      *string
}

type UpdateAppointment struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	employeeLocks *locks.Keyed
	lifecycle     *scheduler.Scheduler
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewUpdateAppointment(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	employeeLocks *locks.Keyed,
	lifecycle *scheduler.Scheduler,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:          repo,
		businessLocks: businessLocks,
		employeeLocks: employeeLocks,
		lifecycle:     lifecycle,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	// Same lock the deferred timers fire under; an edit never interleaves
	// with a timer between its status check and the save.
	uc.businessLocks.Lock(in.BusinessID)
	defer uc.businessLocks.Unlock(in.BusinessID)

	ap, err := uc.repo.GetAppointment(ctx, in.BusinessID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanEdit(ap.Status); err != nil {
		return nil, err
	}

	if in.EmployeeID != nil {
		ap.EmployeeID = *in.EmployeeID
	}
	if in.ServiceID != nil {
		if *in.ServiceID == 0 {
			ap.ServiceID = nil
		} else {
			ap.ServiceID = in.ServiceID
		}
	}
	if in.StartTime != nil {
		ap.AppointmentTime = *in.StartTime
	}
	if in.Notes != nil {
		ap.Notes = *in.Notes
	}

	employee, err := uc.repo.GetEmployee(ctx, in.BusinessID, ap.EmployeeID)
	if err != nil {
		return nil, err
	}

	durationMin := availability.DefaultServiceMinutes
	if ap.ServiceID != nil {
		service, err := uc.repo.GetService(ctx, in.BusinessID, *ap.ServiceID)
		if err != nil {
			return nil, err
		}
		if service.DurationMin > 0 {
			durationMin = service.DurationMin
		}
	}
	ap.EndTime = ap.AppointmentTime.Add(time.Duration(durationMin) * time.Minute)

	uc.employeeLocks.Lock(employee.ID)
	defer uc.employeeLocks.Unlock(employee.ID)

	// The appointment itself is excluded so an unchanged slot re-validates.
	if err := checkConflict(ctx, uc.repo, business, employee, ap.AppointmentTime, ap.EndTime, ap.ID); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// Re-arming replaces the previous timer pair.
	uc.lifecycle.Arm(ap)

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		Action:     "appointment_updated",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bc.Refresh(ctx, in.BusinessID)

	return ap, nil
}
