package appointment

import (
	"context"
	"time"

	"github.com/queuelinehq/queueline/internal/models"
)

type Repository interface {
	// -------- Business --------
	GetBusinessByID(
		ctx context.Context,
		id uint,
	) (*models.Business, error)

	// -------- Employee --------
	GetEmployee(
		ctx context.Context,
		businessID uint,
		employeeID uint,
	) (*models.Employee, error)

	UpdateEmployeeStatus(
		ctx context.Context,
		employeeID uint,
		status string,
	) error

	// -------- Service --------
	GetService(
		ctx context.Context,
		businessID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Appointment --------
	GetAppointment(
		ctx context.Context,
		businessID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ListScheduledAppointments returns the employee's scheduled appointments
	// with start inside [start, end), ordered by start.
	ListScheduledAppointments(
		ctx context.Context,
		employeeID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListScheduledForBusiness is the business-wide variant used by the
	// snapshot projection.
	ListScheduledForBusiness(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListAllScheduledAfter feeds timer rehydration on startup.
	ListAllScheduledAfter(
		ctx context.Context,
		t time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		employeeID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListBusinessAppointmentsForPeriod returns every appointment of the
	// business regardless of status, for the calendar views.
	ListBusinessAppointmentsForPeriod(
		ctx context.Context,
		businessID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Schedule --------
	ListWorkSchedule(
		ctx context.Context,
		employeeID uint,
	) ([]models.WorkScheduleEntry, error)

	ListOverrides(
		ctx context.Context,
		businessID uint,
		employeeID uint,
	) ([]models.ScheduleOverride, error)
}
