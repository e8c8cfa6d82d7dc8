package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/models"
)

type QueueGormRepository struct {
	db *gorm.DB
}

func NewQueueGormRepository(db *gorm.DB) *QueueGormRepository {
	return &QueueGormRepository{db: db}
}

// Non-terminal statuses, i.e. entries still holding a position.
var activeStatuses = []string{
	models.QueueCheckedIn,
	models.QueueArrived,
	models.QueueInService,
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *QueueGormRepository) GetBusinessByID(
	ctx context.Context,
	id uint,
) (*models.Business, error) {

	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, id).Error; err != nil {
		return nil, translate(err, "business_not_found")
	}
	return &business, nil
}

// --------------------------------------------------
// Employees
// --------------------------------------------------

func (r *QueueGormRepository) ListEmployees(
	ctx context.Context,
	businessID uint,
) ([]models.Employee, error) {

	var employees []models.Employee
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Where("business_id = ?", businessID).
		Order("id ASC").
		Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *QueueGormRepository) UpdateEmployeeStatus(
	ctx context.Context,
	employeeID uint,
	status string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", employeeID).
		Update("status", status).Error
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *QueueGormRepository) GetService(
	ctx context.Context,
	businessID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error; err != nil {
		return nil, translate(err, "service_not_found")
	}
	return &service, nil
}

// --------------------------------------------------
// Queue entries
// --------------------------------------------------

func (r *QueueGormRepository) GetEntry(
	ctx context.Context,
	businessID uint,
	entryID uint,
) (*models.QueueEntry, error) {

	var entry models.QueueEntry
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", entryID, businessID).
		First(&entry).Error; err != nil {
		return nil, translate(err, "queue_entry_not_found")
	}
	return &entry, nil
}

func (r *QueueGormRepository) FindActiveEntries(
	ctx context.Context,
	businessID uint,
) ([]models.QueueEntry, error) {

	var entries []models.QueueEntry
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("business_id = ? AND status IN ?", businessID, activeStatuses).
		Order("position_in_queue ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueGormRepository) FindActiveByPhone(
	ctx context.Context,
	businessID uint,
	phone string,
) (*models.QueueEntry, error) {

	var entry models.QueueEntry
	if err := r.db.WithContext(ctx).
		Where(
			"business_id = ? AND phone_number = ? AND status IN ?",
			businessID, phone, activeStatuses,
		).
		First(&entry).Error; err != nil {
		return nil, translate(err, "queue_entry_not_found")
	}
	return &entry, nil
}

func (r *QueueGormRepository) FindActiveAssignedTo(
	ctx context.Context,
	employeeID uint,
) ([]models.QueueEntry, error) {

	var entries []models.QueueEntry
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("employee_id = ? AND status IN ?", employeeID, activeStatuses).
		Order("check_in_time ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueGormRepository) CreateEntry(
	ctx context.Context,
	entry *models.QueueEntry,
) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error, "queue_entry_not_found")
}

func (r *QueueGormRepository) UpdateEntry(
	ctx context.Context,
	entry *models.QueueEntry,
) error {
	return translate(r.db.WithContext(ctx).Save(entry).Error, "queue_entry_not_found")
}

// SaveEntries persists a renumbered batch atomically so positions never go
// half-updated.
func (r *QueueGormRepository) SaveEntries(
	ctx context.Context,
	entries []models.QueueEntry,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Save(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --------------------------------------------------
// Appointments (availability input)
// --------------------------------------------------

func (r *QueueGormRepository) ListScheduledAppointments(
	ctx context.Context,
	employeeID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where(
			"employee_id = ? AND status = 'scheduled' AND appointment_time >= ? AND appointment_time < ?",
			employeeID, start, end,
		).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*QueueGormRepository)(nil)
