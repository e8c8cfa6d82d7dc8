package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuelinehq/queueline/internal/broadcast"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/memrepo"
	"github.com/queuelinehq/queueline/internal/models"
)

func newScheduler(store *memrepo.Store) *Scheduler {
	bc := broadcast.NewBroadcaster(
		broadcast.NewHub(nil),
		broadcast.NewProjector(store, store),
	)
	return New(store, store, locks.NewKeyed(), bc)
}

func seed(store *memrepo.Store) (*models.Business, *models.Employee) {
	business := store.AddBusiness(models.Business{Name: "Fade Factory", Timezone: "UTC", AverageWaitMinutes: 20})
	employee := store.AddEmployee(models.Employee{BusinessID: business.ID, Name: "Sam"})
	return business, employee
}

func TestStartTimer_MovesAppointmentIntoService(t *testing.T) {
	store := memrepo.New()
	business, employee := seed(store)

	ap := store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Walk In",
		PhoneNumber:     "555",
		AppointmentTime: time.Now().Add(20 * time.Millisecond),
		EndTime:         time.Now().Add(10 * time.Second),
	})

	s := newScheduler(store)
	defer s.Close()
	s.Arm(ap)

	require.Eventually(t, func() bool {
		got, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
		return got.ActualStartTime != nil
	}, time.Second, 5*time.Millisecond)

	emp, _ := store.GetEmployee(context.Background(), business.ID, employee.ID)
	assert.Equal(t, models.EmployeeInService, emp.Status)
}

func TestStartTimer_NoOpAfterCancellation(t *testing.T) {
	store := memrepo.New()
	business, employee := seed(store)

	ap := store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Walk In",
		PhoneNumber:     "555",
		AppointmentTime: time.Now().Add(30 * time.Millisecond),
		EndTime:         time.Now().Add(10 * time.Second),
	})

	s := newScheduler(store)
	defer s.Close()
	s.Arm(ap)

	// Cancel in the database without disarming: the timer must detect the
	// stale status on fire and leave everything alone.
	cancelled, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
	cancelled.Status = models.AppointmentCancelled
	require.NoError(t, store.UpdateAppointment(context.Background(), cancelled))

	time.Sleep(100 * time.Millisecond)

	got, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
	assert.Equal(t, models.AppointmentCancelled, got.Status)
	assert.Nil(t, got.ActualStartTime)

	emp, _ := store.GetEmployee(context.Background(), business.ID, employee.ID)
	assert.Equal(t, models.EmployeeAvailable, emp.Status)
}

func TestEndTimer_CompletesAndAutoAssignsFreedEmployee(t *testing.T) {
	store := memrepo.New()
	business, employee := seed(store)
	svc := store.AddService(models.Service{BusinessID: business.ID, Name: "Cut", DurationMin: 30})
	store.Employees[employee.ID].Services = []models.Service{*svc}

	// Head of the unassigned waiting line wants a service Sam performs.
	head := store.AddEntry(models.QueueEntry{
		BusinessID:      business.ID,
		ServiceID:       &svc.ID,
		FullName:        "First",
		PhoneNumber:     "111",
		Status:          models.QueueCheckedIn,
		PositionInQueue: 1,
		CheckInTime:     time.Now(),
	})

	ap := store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Booked",
		PhoneNumber:     "222",
		AppointmentTime: time.Now().Add(-time.Minute),
		EndTime:         time.Now().Add(20 * time.Millisecond),
	})

	s := newScheduler(store)
	defer s.Close()
	s.Arm(ap)

	require.Eventually(t, func() bool {
		got, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
		return got.Status == models.AppointmentCompleted
	}, time.Second, 5*time.Millisecond)

	got, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
	require.NotNil(t, got.ActualEndTime)

	emp, _ := store.GetEmployee(context.Background(), business.ID, employee.ID)
	assert.Equal(t, models.EmployeeAvailable, emp.Status)

	entry, _ := store.GetEntry(context.Background(), business.ID, head.ID)
	require.NotNil(t, entry.EmployeeID)
	assert.Equal(t, employee.ID, *entry.EmployeeID)
	// Assignment is eager; service has not started yet.
	assert.Equal(t, models.QueueCheckedIn, entry.Status)
}

func TestDisarm_SuppressesBothActions(t *testing.T) {
	store := memrepo.New()
	business, employee := seed(store)

	ap := store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Walk In",
		PhoneNumber:     "555",
		AppointmentTime: time.Now().Add(20 * time.Millisecond),
		EndTime:         time.Now().Add(40 * time.Millisecond),
	})

	s := newScheduler(store)
	defer s.Close()
	s.Arm(ap)
	s.Disarm(ap.ID)

	time.Sleep(100 * time.Millisecond)

	got, _ := store.GetAppointment(context.Background(), business.ID, ap.ID)
	assert.Equal(t, models.AppointmentScheduled, got.Status)
	assert.Nil(t, got.ActualStartTime)
	assert.Nil(t, got.ActualEndTime)
}

func TestRehydrate_ReArmsPersistedAppointments(t *testing.T) {
	store := memrepo.New()
	business, employee := seed(store)

	store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Survivor",
		PhoneNumber:     "555",
		AppointmentTime: time.Now().Add(-time.Minute), // overdue start
		EndTime:         time.Now().Add(10 * time.Second),
	})
	// Already finished: not re-armed.
	done := store.AddAppointment(models.Appointment{
		BusinessID:      business.ID,
		EmployeeID:      employee.ID,
		FullName:        "Old",
		PhoneNumber:     "556",
		Status:          models.AppointmentCompleted,
		AppointmentTime: time.Now().Add(-2 * time.Hour),
		EndTime:         time.Now().Add(-time.Hour),
	})

	s := newScheduler(store)
	defer s.Close()
	require.NoError(t, s.Rehydrate(context.Background()))

	// The overdue start fires immediately after rehydration.
	require.Eventually(t, func() bool {
		emp, _ := store.GetEmployee(context.Background(), business.ID, employee.ID)
		return emp.Status == models.EmployeeInService
	}, time.Second, 5*time.Millisecond)

	got, _ := store.GetAppointment(context.Background(), business.ID, done.ID)
	assert.Equal(t, models.AppointmentCompleted, got.Status)
}
