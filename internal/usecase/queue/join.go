package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
	"github.com/queuelinehq/queueline/internal/validators"
)

// How far ahead the eager-match check looks for the employee's next booking.
const matchHorizon = 24 * time.Hour

type JoinQueueInput struct {
	BusinessID uint
	ServiceID  *uint
	UserID     *uint

	FullName    string
	PhoneNumber string
}

type JoinQueue struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewJoinQueue(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *JoinQueue {
	return &JoinQueue{
		repo:          repo,
		businessLocks: businessLocks,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *JoinQueue) Execute(
	ctx context.Context,
	in JoinQueueInput,
) (*models.QueueEntry, error) {

	business, err := uc.repo.GetBusinessByID(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	phone := validators.NormalizePhone(in.PhoneNumber)
	if in.FullName == "" || phone == "" {
		return nil, httperr.Validation("missing_name_or_phone")
	}

	var service *models.Service
	if in.ServiceID != nil {
		service, err = uc.repo.GetService(ctx, in.BusinessID, *in.ServiceID)
		if err != nil {
			return nil, err
		}
	}

	now := timezone.NowIn(business.Timezone)

	uc.businessLocks.Lock(in.BusinessID)
	defer uc.businessLocks.Unlock(in.BusinessID)

	if _, err := uc.repo.FindActiveByPhone(ctx, in.BusinessID, phone); err == nil {
		return nil, httperr.AlreadyInQueue()
	}

	active, err := uc.repo.FindActiveEntries(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	position := len(active) + 1
	estimate := now.Add(time.Duration(business.AverageWaitMinutes*(position-1)) * time.Minute)

	entry := &models.QueueEntry{
		BusinessID:           in.BusinessID,
		ServiceID:            in.ServiceID,
		UserID:               in.UserID,
		FullName:             in.FullName,
		PhoneNumber:          phone,
		TicketCode:           uuid.NewString(),
		Status:               models.QueueCheckedIn,
		PositionInQueue:      position,
		CheckInTime:          now,
		EstimatedServiceTime: &estimate,
	}

	if matched := uc.matchEmployee(ctx, business, service, now); matched != nil {
		// Eager assignment only; status stays checked_in until service
		// actually starts.
		entry.EmployeeID = &matched.ID
	}

	if err := uc.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     "queue_joined",
		Entity:     "queue_entry",
		EntityID:   &entry.ID,
	})

	uc.bc.Refresh(ctx, in.BusinessID)

	return entry, nil
}

// matchEmployee finds an available employee with a free slot right now: no
// active assignments and no booking starting before the walk-in would end.
func (uc *JoinQueue) matchEmployee(
	ctx context.Context,
	business *models.Business,
	service *models.Service,
	now time.Time,
) *models.Employee {

	employees, err := uc.repo.ListEmployees(ctx, business.ID)
	if err != nil {
		return nil
	}

	duration := time.Duration(business.AverageWaitMinutes) * time.Minute
	if service != nil && service.DurationMin > 0 {
		duration = time.Duration(service.DurationMin) * time.Minute
	}

	var serviceID uint
	if service != nil {
		serviceID = service.ID
	}

	for i := range employees {
		emp := &employees[i]
		if emp.Status != models.EmployeeAvailable || !emp.CanPerform(serviceID) {
			continue
		}

		assigned, err := uc.repo.FindActiveAssignedTo(ctx, emp.ID)
		if err != nil || len(assigned) > 0 {
			continue
		}

		upcoming, err := uc.repo.ListScheduledAppointments(ctx, emp.ID, now, now.Add(matchHorizon))
		if err != nil {
			continue
		}
		if len(upcoming) > 0 && upcoming[0].AppointmentTime.Before(now.Add(duration)) {
			continue
		}

		return emp
	}
	return nil
}
