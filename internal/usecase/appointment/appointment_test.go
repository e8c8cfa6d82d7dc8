package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/memrepo"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/scheduler"
)

type fixture struct {
	store     *memrepo.Store
	business  *models.Business
	employee  *models.Employee
	service   *models.Service
	lifecycle *scheduler.Scheduler
	audit     *audit.Dispatcher
	bc        *broadcast.Broadcaster
	bizLocks  *locks.Keyed
	empLocks  *locks.Keyed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memrepo.New()
	business := store.AddBusiness(models.Business{
		Name:               "Corner Cuts",
		Slug:               "corner-cuts",
		AverageWaitMinutes: 20,
		OpeningTime:        "09:00",
		ClosingTime:        "18:00",
		Timezone:           "UTC",
	})
	employee := store.AddEmployee(models.Employee{
		BusinessID: business.ID,
		Name:       "Marcos",
		Status:     models.EmployeeAvailable,
	})
	service := store.AddService(models.Service{
		BusinessID:  business.ID,
		Name:        "Haircut",
		DurationMin: 30,
	})

	// Every weekday 09:00 to 18:00.
	var entries []models.WorkScheduleEntry
	for wd := 0; wd < 7; wd++ {
		entries = append(entries, models.WorkScheduleEntry{
			EmployeeID: employee.ID,
			Weekday:    wd,
			StartTime:  "09:00",
			EndTime:    "18:00",
			IsWorking:  true,
		})
	}
	store.SetWorkSchedule(employee.ID, entries)

	hub := broadcast.NewHub(nil)
	t.Cleanup(hub.Close)

	bc := broadcast.NewBroadcaster(hub, broadcast.NewProjector(store, store))

	// Timers and manual transitions serialize on the same business lock.
	bizLocks := locks.NewKeyed()
	lifecycle := scheduler.New(store, store, bizLocks, bc)
	t.Cleanup(lifecycle.Close)

	return &fixture{
		store:     store,
		business:  business,
		employee:  employee,
		service:   service,
		lifecycle: lifecycle,
		audit:     audit.NewDispatcher(nil),
		bc:        bc,
		bizLocks:  bizLocks,
		empLocks:  locks.NewKeyed(),
	}
}

func (f *fixture) booker() *BookAppointment {
	return NewBookAppointment(f.store, f.empLocks, f.lifecycle, f.audit, f.bc)
}

// tomorrowAt returns tomorrow at the given wall-clock hour, UTC.
func tomorrowAt(hour, min int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.UTC)
}

func TestBookAppointmentWithinWorkingHours(t *testing.T) {
	f := newFixture(t)

	start := tomorrowAt(10, 0)
	ap, err := f.booker().Execute(context.Background(), BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   start,
	})
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentScheduled, ap.Status)
	assert.True(t, ap.EndTime.Equal(start.Add(30*time.Minute)))
}

func TestBookAppointmentOutsideWorkingHours(t *testing.T) {
	f := newFixture(t)

	_, err := f.booker().Execute(context.Background(), BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(22, 0),
	})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeOutsideWorkingHours))
}

func TestBookAppointmentRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	// Starts inside Ana's slot.
	_, err = f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Bruno",
		PhoneNumber: "+5511999990002",
		StartTime:   tomorrowAt(10, 15),
	})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))
}

func TestBookAppointmentBackToBackAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	_, err = f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Bruno",
		PhoneNumber: "+5511999990002",
		StartTime:   tomorrowAt(10, 30),
	})
	require.NoError(t, err)
}

func TestBookAppointmentOpenAllDayBypassesHours(t *testing.T) {
	f := newFixture(t)
	f.business.OpenAllDay = true
	f.store.AddBusiness(*f.business)

	_, err := f.booker().Execute(context.Background(), BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(3, 0),
	})
	require.NoError(t, err)
}

func TestBookAppointmentIdentityRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.booker().Execute(context.Background(), BookAppointmentInput{
		BusinessID: f.business.ID,
		EmployeeID: f.employee.ID,
		StartTime:  tomorrowAt(10, 0),
	})
	require.Error(t, err)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	// User and bare contact at once is just as ambiguous.
	userID := uint(7)
	_, err = f.booker().Execute(context.Background(), BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		UserID:      &userID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.Error(t, err)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestUpdateAppointmentExcludesItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	// Nudging the start by 15 minutes overlaps the old slot, which must not
	// count against itself.
	newStart := tomorrowAt(10, 15)
	uc := NewUpdateAppointment(f.store, f.bizLocks, f.empLocks, f.lifecycle, f.audit, f.bc)
	updated, err := uc.Execute(ctx, UpdateAppointmentInput{
		BusinessID:    f.business.ID,
		AppointmentID: ap.ID,
		StartTime:     &newStart,
	})
	require.NoError(t, err)
	assert.True(t, updated.AppointmentTime.Equal(newStart))
	assert.True(t, updated.EndTime.Equal(newStart.Add(30*time.Minute)))
}

func TestUpdateAppointmentRejectsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	cancel := NewUpdateAppointmentStatus(f.store, f.bizLocks, f.lifecycle, f.audit, f.bc)
	_, err = cancel.Execute(ctx, f.business.ID, ap.ID, models.AppointmentCancelled)
	require.NoError(t, err)

	newStart := tomorrowAt(11, 0)
	uc := NewUpdateAppointment(f.store, f.bizLocks, f.empLocks, f.lifecycle, f.audit, f.bc)
	_, err = uc.Execute(ctx, UpdateAppointmentInput{
		BusinessID:    f.business.ID,
		AppointmentID: ap.ID,
		StartTime:     &newStart,
	})
	require.Error(t, err)
	assert.Equal(t, httperr.KindStateConflict, httperr.KindOf(err))
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	cancel := NewUpdateAppointmentStatus(f.store, f.bizLocks, f.lifecycle, f.audit, f.bc)
	got, err := cancel.Execute(ctx, f.business.ID, ap.ID, models.AppointmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)

	// Cancelled bookings no longer block the slot.
	_, err = f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Bruno",
		PhoneNumber: "+5511999990002",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)
}

func TestManualCompleteReleasesEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	require.NoError(t, f.store.UpdateEmployeeStatus(ctx, f.employee.ID, models.EmployeeInService))

	complete := NewUpdateAppointmentStatus(f.store, f.bizLocks, f.lifecycle, f.audit, f.bc)
	got, err := complete.Execute(ctx, f.business.ID, ap.ID, models.AppointmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, got.Status)
	require.NotNil(t, got.ActualEndTime)

	emp, err := f.store.GetEmployee(ctx, f.business.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeAvailable, emp.Status)
}

func TestListAppointmentsByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	day := tomorrowAt(0, 0)
	uc := NewListAppointments(f.store)

	got, err := uc.ByDay(ctx, f.business.ID, 0, day)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = uc.ByDay(ctx, f.business.ID, f.employee.ID, day)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = uc.ByDay(ctx, f.business.ID, 0, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDaySlotsSkipBookedRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := tomorrowAt(10, 0)
	_, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		ServiceID:   &f.service.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   booked,
	})
	require.NoError(t, err)

	uc := NewDaySlots(f.store)
	slots, err := uc.Execute(ctx, f.business.ID, f.employee.ID, &f.service.ID, tomorrowAt(0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	for _, s := range slots {
		// No slot may overlap the existing booking.
		overlaps := s.Start.Before(booked.Add(30*time.Minute)) && booked.Before(s.End)
		assert.Falsef(t, overlaps, "slot %v overlaps booked range", s.Start)

		assert.False(t, s.Start.Before(tomorrowAt(9, 0)))
		assert.False(t, s.End.After(tomorrowAt(18, 0)))
	}
}

func TestManualTransitionWaitsForBusinessLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.booker().Execute(ctx, BookAppointmentInput{
		BusinessID:  f.business.ID,
		EmployeeID:  f.employee.ID,
		FullName:    "Ana",
		PhoneNumber: "+5511999990001",
		StartTime:   tomorrowAt(10, 0),
	})
	require.NoError(t, err)

	cancel := NewUpdateAppointmentStatus(f.store, f.bizLocks, f.lifecycle, f.audit, f.bc)

	// Hold the business lock the way a firing timer does.
	f.bizLocks.Lock(f.business.ID)

	done := make(chan error, 1)
	go func() {
		_, err := cancel.Execute(ctx, f.business.ID, ap.ID, models.AppointmentCancelled)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("transition ran while the business lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	f.bizLocks.Unlock(f.business.ID)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("transition never finished after the lock was released")
	}

	got, err := f.store.GetAppointment(ctx, f.business.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, got.Status)
}
