package appointment

import (
	"context"
	"time"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/availability"
	"github.com/queuelinehq/queueline/internal/domain/schedule"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/scheduler"
	"github.com/queuelinehq/queueline/internal/timezone"
	"github.com/queuelinehq/queueline/internal/validators"
)

type BookAppointmentInput struct {
	BusinessID uint
	EmployeeID uint
	ServiceID  *uint

	UserID      *uint
	FullName    string
	PhoneNumber string

	StartTime time.Time
	Notes     string
}

type BookAppointment struct {
	repo          domain.Repository
	employeeLocks *locks.Keyed
	lifecycle     *scheduler.Scheduler
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewBookAppointment(
	repo domain.Repository,
	employeeLocks *locks.Keyed,
	lifecycle *scheduler.Scheduler,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *BookAppointment {
	return &BookAppointment{
		repo:          repo,
		employeeLocks: employeeLocks,
		lifecycle:     lifecycle,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	phone := validators.NormalizePhone(in.PhoneNumber)
	if err := domain.ValidateIdentity(in.UserID, in.FullName, phone); err != nil {
		return nil, err
	}

	employee, err := uc.repo.GetEmployee(ctx, in.BusinessID, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	durationMin := availability.DefaultServiceMinutes
	if in.ServiceID != nil {
		service, err := uc.repo.GetService(ctx, in.BusinessID, *in.ServiceID)
		if err != nil {
			return nil, err
		}
		if service.DurationMin > 0 {
			durationMin = service.DurationMin
		}
	}

	start := in.StartTime
	end := start.Add(time.Duration(durationMin) * time.Minute)

	// Conflict checks for one employee never run concurrently, or two
	// bookings could both pass against the same stale snapshot.
	uc.employeeLocks.Lock(employee.ID)
	defer uc.employeeLocks.Unlock(employee.ID)

	if err := checkConflict(ctx, uc.repo, business, employee, start, end, 0); err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		BusinessID:      in.BusinessID,
		EmployeeID:      in.EmployeeID,
		ServiceID:       in.ServiceID,
		UserID:          in.UserID,
		FullName:        in.FullName,
		PhoneNumber:     phone,
		AppointmentTime: start,
		EndTime:         end,
		Status:          models.AppointmentScheduled,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.lifecycle.Arm(ap)

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     "appointment_booked",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bc.Refresh(ctx, in.BusinessID)

	return ap, nil
}

// checkConflict expands the employee's working intervals around the
// candidate and runs the detector. Shared with UpdateAppointment.
func checkConflict(
	ctx context.Context,
	repo domain.Repository,
	business *models.Business,
	employee *models.Employee,
	start time.Time,
	end time.Time,
	excludeID uint,
) error {

	loc := timezone.Location(business.Timezone)

	dayStart := time.Date(start.In(loc).Year(), start.In(loc).Month(), start.In(loc).Day(), 0, 0, 0, 0, loc)
	dayEnd := time.Date(end.In(loc).Year(), end.In(loc).Month(), end.In(loc).Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	var working []schedule.Interval
	if !business.Open24Hours() {
		entries, err := repo.ListWorkSchedule(ctx, employee.ID)
		if err != nil {
			return err
		}
		overrides, err := repo.ListOverrides(ctx, business.ID, employee.ID)
		if err != nil {
			return err
		}
		working = schedule.WorkingIntervals(entries, overrides, loc, dayStart, dayEnd)
	}

	// The overlap window reaches back a day so long-running bookings that
	// started earlier are still seen.
	existing, err := repo.ListScheduledAppointments(ctx, employee.ID, dayStart.AddDate(0, 0, -1), dayEnd)
	if err != nil {
		return err
	}

	return domain.CheckConflict(domain.ConflictInput{
		Business:  business,
		Working:   working,
		Existing:  existing,
		Start:     start,
		End:       end,
		ExcludeID: excludeID,
	})
}
