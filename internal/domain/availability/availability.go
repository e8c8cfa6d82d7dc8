package availability

import (
	"sort"
	"time"

	"github.com/queuelinehq/queueline/internal/models"
)

// Break end is not tracked separately, so an employee on break is assumed
// back after a fixed allowance.
const BreakAllowance = 15 * time.Minute

// DefaultServiceMinutes applies when neither the entry nor the booking names
// a service.
const DefaultServiceMinutes = 30

// CommittedWork is the snapshot of everything already promised to one
// employee: assigned active queue entries in FIFO order and scheduled
// appointments.
type CommittedWork struct {
	QueueEntries []models.QueueEntry
	Appointments []models.Appointment
}

func serviceDuration(svc *models.Service, fallbackMinutes int) time.Duration {
	if svc != nil && svc.DurationMin > 0 {
		return time.Duration(svc.DurationMin) * time.Minute
	}
	if fallbackMinutes <= 0 {
		fallbackMinutes = DefaultServiceMinutes
	}
	return time.Duration(fallbackMinutes) * time.Minute
}

// NextAvailable returns the earliest instant the employee can start new work.
// Read-only and deterministic for a fixed snapshot; callers re-run it after
// every commit instead of caching.
func NextAvailable(
	employee *models.Employee,
	work CommittedWork,
	asOf time.Time,
	fallbackMinutes int,
) time.Time {

	t := asOf

	if employee.Status == models.EmployeeOnBreak {
		t = t.Add(BreakAllowance)
	}

	for _, entry := range work.QueueEntries {
		if entry.Status != models.QueueInService && entry.Status != models.QueueCheckedIn {
			continue
		}
		t = t.Add(serviceDuration(entry.Service, fallbackMinutes))
	}

	appointments := make([]models.Appointment, 0, len(work.Appointments))
	for _, ap := range work.Appointments {
		if ap.Status == models.AppointmentScheduled && !ap.AppointmentTime.Before(asOf) {
			appointments = append(appointments, ap)
		}
	}
	sort.Slice(appointments, func(a, b int) bool {
		return appointments[a].AppointmentTime.Before(appointments[b].AppointmentTime)
	})

	for _, ap := range appointments {
		duration := serviceDuration(ap.Service, fallbackMinutes)
		if ap.AppointmentTime.After(t) {
			// Idle gap until the appointment, busy through it.
			t = ap.AppointmentTime.Add(duration)
		} else {
			t = t.Add(duration)
		}
	}

	return t
}

// BusinessWait estimates the wait for a new walk-in needing the given
// service: the smallest next-available gap across capable employees, clamped
// to zero. Falls back to the business average when nobody is eligible.
func BusinessWait(
	business *models.Business,
	employees []models.Employee,
	workByEmployee map[uint]CommittedWork,
	serviceID uint,
	now time.Time,
) time.Duration {

	fallbackDuration := time.Duration(business.AverageWaitMinutes) * time.Minute

	best := time.Duration(-1)
	for i := range employees {
		emp := &employees[i]
		if emp.Status == models.EmployeeOff {
			continue
		}
		if !emp.CanPerform(serviceID) {
			continue
		}

		next := NextAvailable(emp, workByEmployee[emp.ID], now, business.AverageWaitMinutes)
		wait := next.Sub(now)
		if wait < 0 {
			wait = 0
		}
		if best < 0 || wait < best {
			best = wait
		}
	}

	if best < 0 {
		return fallbackDuration
	}
	return best
}
