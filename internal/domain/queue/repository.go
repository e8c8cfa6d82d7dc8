package queue

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

	// -------- Employees --------

	// ListEmployees returns the business's employees with services preloaded.
	ListEmployees(
		ctx context.Context,
		businessID uint,
	) ([]models.Employee, error)

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

	// -------- Queue entries --------

	GetEntry(
		ctx context.Context,
		businessID uint,
		entryID uint,
	) (*models.QueueEntry, error)

	// FindActiveEntries returns non-terminal entries ordered by position,
	// services preloaded.
	FindActiveEntries(
		ctx context.Context,
		businessID uint,
	) ([]models.QueueEntry, error)

	// FindActiveByPhone backs the duplicate check-in guard.
	FindActiveByPhone(
		ctx context.Context,
		businessID uint,
		phone string,
	) (*models.QueueEntry, error)

	// FindActiveAssignedTo returns active entries assigned to one employee in
	// assignment (check-in) order.
	FindActiveAssignedTo(
		ctx context.Context,
		employeeID uint,
	) ([]models.QueueEntry, error)

	CreateEntry(
		ctx context.Context,
		entry *models.QueueEntry,
	) error

	UpdateEntry(
		ctx context.Context,
		entry *models.QueueEntry,
	) error

	// SaveEntries persists a renumbered batch in one transaction.
	SaveEntries(
		ctx context.Context,
		entries []models.QueueEntry,
	) error

	// -------- Appointments (availability input) --------
	ListScheduledAppointments(
		ctx context.Context,
		employeeID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
