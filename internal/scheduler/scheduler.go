package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/queuelinehq/queueline/internal/broadcast"
	"github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
)

// Scheduler arms a deferred action pair per confirmed appointment: one at
// start time (move to in-service) and one at end time (complete and free the
// employee). Timers are advisory; the authoritative guard is the status
// re-check at fire time, which turns any stale timer into a no-op. On
// startup, Rehydrate re-arms from persisted appointment times, so timers
// survive restarts.
type Scheduler struct {
	appts  appointment.Repository
	queues queue.Repository

	businessLocks *locks.Keyed
	bc            *broadcast.Broadcaster

	mu     sync.Mutex
	armed  map[uint]*armedPair
	closed bool
}

type armedPair struct {
	start *time.Timer
	end   *time.Timer
}

func New(
	appts appointment.Repository,
	queues queue.Repository,
	businessLocks *locks.Keyed,
	bc *broadcast.Broadcaster,
) *Scheduler {
	return &Scheduler{
		appts:         appts,
		queues:        queues,
		businessLocks: businessLocks,
		bc:            bc,
		armed:         make(map[uint]*armedPair),
	}
}

// Arm schedules both deferred actions for the appointment. Re-arming an id
// replaces any previous pair.
func (s *Scheduler) Arm(ap *models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if pair, ok := s.armed[ap.ID]; ok {
		pair.stop()
	}

	apID := ap.ID
	businessID := ap.BusinessID

	pair := &armedPair{
		start: time.AfterFunc(time.Until(ap.AppointmentTime), func() {
			s.fireStart(apID, businessID)
		}),
		end: time.AfterFunc(time.Until(ap.EndTime), func() {
			s.fireEnd(apID, businessID)
		}),
	}
	s.armed[apID] = pair
}

// Disarm suppresses both pending deferred actions for the appointment, as on
// cancellation or a manual status change.
func (s *Scheduler) Disarm(appointmentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pair, ok := s.armed[appointmentID]; ok {
		pair.stop()
		delete(s.armed, appointmentID)
	}
}

// Rehydrate re-arms timers for every appointment still scheduled with an end
// time in the future. Overdue starts fire immediately and resolve through
// the usual status re-check.
func (s *Scheduler) Rehydrate(ctx context.Context) error {
	pending, err := s.appts.ListAllScheduledAfter(ctx, time.Now())
	if err != nil {
		return err
	}

	for i := range pending {
		s.Arm(&pending[i])
	}

	if len(pending) > 0 {
		log.Printf("scheduler: re-armed %d pending appointments", len(pending))
	}
	return nil
}

// Close stops all timers. Pending actions simply never fire; a later
// Rehydrate picks them up again.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, pair := range s.armed {
		pair.stop()
		delete(s.armed, id)
	}
}

func (p *armedPair) stop() {
	p.start.Stop()
	p.end.Stop()
}

// fireStart moves a still-scheduled appointment into service.
func (s *Scheduler) fireStart(appointmentID, businessID uint) {
	ctx := context.Background()

	s.businessLocks.Lock(businessID)
	defer s.businessLocks.Unlock(businessID)

	ap, err := s.appts.GetAppointment(ctx, businessID, appointmentID)
	if err != nil {
		log.Printf("scheduler: start fire lookup failed for appointment %d: %v", appointmentID, err)
		return
	}
	if ap.Status != models.AppointmentScheduled {
		// Cancelled or edited in the interim. Expected, not exceptional.
		log.Printf("scheduler: start timer for appointment %d found status %q, skipping", appointmentID, ap.Status)
		return
	}

	now := time.Now()
	ap.ActualStartTime = &now
	if err := s.appts.UpdateAppointment(ctx, ap); err != nil {
		log.Printf("scheduler: start update failed for appointment %d: %v", appointmentID, err)
		return
	}
	if err := s.appts.UpdateEmployeeStatus(ctx, ap.EmployeeID, models.EmployeeInService); err != nil {
		log.Printf("scheduler: employee status update failed: %v", err)
	}

	s.bc.Refresh(ctx, businessID)
}

// fireEnd completes a still-scheduled appointment and hands the freed
// employee to the queue.
func (s *Scheduler) fireEnd(appointmentID, businessID uint) {
	ctx := context.Background()

	s.businessLocks.Lock(businessID)

	ap, err := s.appts.GetAppointment(ctx, businessID, appointmentID)
	if err != nil {
		s.businessLocks.Unlock(businessID)
		log.Printf("scheduler: end fire lookup failed for appointment %d: %v", appointmentID, err)
		return
	}
	if ap.Status != models.AppointmentScheduled {
		s.businessLocks.Unlock(businessID)
		log.Printf("scheduler: end timer for appointment %d found status %q, skipping", appointmentID, ap.Status)
		return
	}

	if err := appointment.Complete(ap, time.Now()); err != nil {
		s.businessLocks.Unlock(businessID)
		log.Printf("scheduler: complete transition rejected for appointment %d: %v", appointmentID, err)
		return
	}
	if err := s.appts.UpdateAppointment(ctx, ap); err != nil {
		s.businessLocks.Unlock(businessID)
		log.Printf("scheduler: end update failed for appointment %d: %v", appointmentID, err)
		return
	}
	s.businessLocks.Unlock(businessID)

	s.Disarm(appointmentID)
	s.ReleaseEmployee(ctx, businessID, ap.EmployeeID)
	s.bc.Refresh(ctx, businessID)
}

// ReleaseEmployee returns the employee to the available pool and, when the
// head of the unassigned waiting line needs a service this employee can
// perform, assigns them eagerly. Manual completion and cancellation run the
// same path.
func (s *Scheduler) ReleaseEmployee(ctx context.Context, businessID, employeeID uint) {
	s.businessLocks.Lock(businessID)
	defer s.businessLocks.Unlock(businessID)

	if err := s.appts.UpdateEmployeeStatus(ctx, employeeID, models.EmployeeAvailable); err != nil {
		log.Printf("scheduler: release of employee %d failed: %v", employeeID, err)
		return
	}

	employee, err := s.appts.GetEmployee(ctx, businessID, employeeID)
	if err != nil {
		log.Printf("scheduler: employee %d lookup failed: %v", employeeID, err)
		return
	}

	entries, err := s.queues.FindActiveEntries(ctx, businessID)
	if err != nil {
		log.Printf("scheduler: queue scan failed for business %d: %v", businessID, err)
		return
	}

	queue.SortByPosition(entries)
	for i := range entries {
		entry := &entries[i]
		if !queue.IsWaiting(entry.Status) || entry.EmployeeID != nil {
			continue
		}
		var serviceID uint
		if entry.ServiceID != nil {
			serviceID = *entry.ServiceID
		}
		if !employee.CanPerform(serviceID) {
			continue
		}

		entry.EmployeeID = &employeeID
		if err := s.queues.UpdateEntry(ctx, entry); err != nil {
			log.Printf("scheduler: queue assignment failed for entry %d: %v", entry.ID, err)
		}
		return
	}
}
