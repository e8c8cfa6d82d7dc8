package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/queuelinehq/queueline/internal/models"
)

var baseTime = time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)

func svc(minutes int) *models.Service {
	return &models.Service{ID: 1, DurationMin: minutes}
}

func TestNextAvailable_IdleEmployee(t *testing.T) {
	emp := &models.Employee{Status: models.EmployeeAvailable}
	got := NextAvailable(emp, CommittedWork{}, baseTime, 30)
	assert.Equal(t, baseTime, got)
}

func TestNextAvailable_OnBreakAllowance(t *testing.T) {
	emp := &models.Employee{Status: models.EmployeeOnBreak}
	got := NextAvailable(emp, CommittedWork{}, baseTime, 30)
	assert.Equal(t, baseTime.Add(15*time.Minute), got)
}

func TestNextAvailable_QueueEntriesAccumulate(t *testing.T) {
	emp := &models.Employee{Status: models.EmployeeInService}
	work := CommittedWork{
		QueueEntries: []models.QueueEntry{
			{Status: models.QueueInService, Service: svc(20)},
			{Status: models.QueueCheckedIn},          // no service: fallback 30
			{Status: models.QueueCancelled, Service: svc(60)}, // ignored
		},
	}

	got := NextAvailable(emp, work, baseTime, 30)
	assert.Equal(t, baseTime.Add(50*time.Minute), got)
}

func TestNextAvailable_BusyThroughAppointment(t *testing.T) {
	// Appointment at T with a 30-min service, asked at T-10min: the employee
	// is idle until T, then busy until T+30.
	appointmentAt := baseTime.Add(10 * time.Minute)
	emp := &models.Employee{Status: models.EmployeeAvailable}
	work := CommittedWork{
		Appointments: []models.Appointment{{
			Status:          models.AppointmentScheduled,
			AppointmentTime: appointmentAt,
			Service:         svc(30),
		}},
	}

	got := NextAvailable(emp, work, baseTime, 30)
	assert.Equal(t, appointmentAt.Add(30*time.Minute), got)
}

func TestNextAvailable_AbsorbedAppointment(t *testing.T) {
	// Queue work already pushes t past the appointment start, so its duration
	// stacks on top instead of opening a gap.
	emp := &models.Employee{Status: models.EmployeeAvailable}
	work := CommittedWork{
		QueueEntries: []models.QueueEntry{{Status: models.QueueInService, Service: svc(60)}},
		Appointments: []models.Appointment{{
			Status:          models.AppointmentScheduled,
			AppointmentTime: baseTime.Add(30 * time.Minute),
			Service:         svc(15),
		}},
	}

	got := NextAvailable(emp, work, baseTime, 30)
	assert.Equal(t, baseTime.Add(75*time.Minute), got)
}

func TestNextAvailable_MonotonicUnderAddedWork(t *testing.T) {
	emp := &models.Employee{Status: models.EmployeeAvailable}

	work := CommittedWork{}
	prev := NextAvailable(emp, work, baseTime, 30)

	additions := []models.Appointment{
		{Status: models.AppointmentScheduled, AppointmentTime: baseTime.Add(2 * time.Hour), Service: svc(30)},
		{Status: models.AppointmentScheduled, AppointmentTime: baseTime.Add(20 * time.Minute), Service: svc(45)},
		{Status: models.AppointmentScheduled, AppointmentTime: baseTime.Add(4 * time.Hour), Service: svc(15)},
	}

	for _, ap := range additions {
		work.Appointments = append(work.Appointments, ap)
		next := NextAvailable(emp, work, baseTime, 30)
		assert.False(t, next.Before(prev), "nextAvailable must never decrease as work is added")
		prev = next
	}
}

func TestBusinessWait_NoEligibleEmployees(t *testing.T) {
	business := &models.Business{AverageWaitMinutes: 20}

	got := BusinessWait(business, nil, nil, 0, baseTime)
	assert.Equal(t, 20*time.Minute, got)
}

func TestBusinessWait_MinOverCapableEmployees(t *testing.T) {
	business := &models.Business{AverageWaitMinutes: 20}
	service := models.Service{ID: 7, DurationMin: 30}

	employees := []models.Employee{
		{ID: 1, Status: models.EmployeeAvailable, Services: []models.Service{service}},
		{ID: 2, Status: models.EmployeeAvailable, Services: []models.Service{service}},
		{ID: 3, Status: models.EmployeeAvailable}, // cannot perform service 7
		{ID: 4, Status: models.EmployeeOff, Services: []models.Service{service}},
	}

	work := map[uint]CommittedWork{
		1: {QueueEntries: []models.QueueEntry{{Status: models.QueueInService, Service: svc(40)}}},
		2: {QueueEntries: []models.QueueEntry{{Status: models.QueueInService, Service: svc(25)}}},
		3: {},
		4: {},
	}

	got := BusinessWait(business, employees, work, 7, baseTime)
	assert.Equal(t, 25*time.Minute, got)
}

func TestBusinessWait_ClampedToZero(t *testing.T) {
	business := &models.Business{AverageWaitMinutes: 20}
	employees := []models.Employee{{ID: 1, Status: models.EmployeeAvailable}}

	got := BusinessWait(business, employees, map[uint]CommittedWork{}, 0, baseTime)
	assert.Equal(t, time.Duration(0), got)
}
