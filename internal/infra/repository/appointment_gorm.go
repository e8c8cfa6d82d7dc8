package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBusinessByID(
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
// Employee
// --------------------------------------------------

func (r *AppointmentGormRepository) GetEmployee(
	ctx context.Context,
	businessID uint,
	employeeID uint,
) (*models.Employee, error) {

	var employee models.Employee
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Where("id = ? AND business_id = ?", employeeID, businessID).
		First(&employee).Error; err != nil {
		return nil, translate(err, "employee_not_found")
	}
	return &employee, nil
}

func (r *AppointmentGormRepository) UpdateEmployeeStatus(
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

func (r *AppointmentGormRepository) GetService(
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
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	businessID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", appointmentID, businessID).
		First(&ap).Error; err != nil {
		return nil, translate(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return translate(r.db.WithContext(ctx).Create(ap).Error, "appointment_not_found")
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return translate(r.db.WithContext(ctx).Save(ap).Error, "appointment_not_found")
}

func (r *AppointmentGormRepository) ListScheduledAppointments(
	ctx context.Context,
	employeeID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
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

func (r *AppointmentGormRepository) ListScheduledForBusiness(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("User").
		Where(
			"business_id = ? AND status = 'scheduled' AND appointment_time >= ? AND appointment_time < ?",
			businessID, start, end,
		).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAllScheduledAfter(
	ctx context.Context,
	t time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("status = 'scheduled' AND end_time > ?", t).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	employeeID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("User").
		Where(
			"employee_id = ? AND appointment_time >= ? AND appointment_time < ?",
			employeeID, start, end,
		).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListBusinessAppointmentsForPeriod(
	ctx context.Context,
	businessID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("User").
		Preload("Employee").
		Where(
			"business_id = ? AND appointment_time >= ? AND appointment_time < ?",
			businessID, start, end,
		).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) ListWorkSchedule(
	ctx context.Context,
	employeeID uint,
) ([]models.WorkScheduleEntry, error) {

	var entries []models.WorkScheduleEntry
	if err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("weekday ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AppointmentGormRepository) ListOverrides(
	ctx context.Context,
	businessID uint,
	employeeID uint,
) ([]models.ScheduleOverride, error) {

	var overrides []models.ScheduleOverride
	if err := r.db.WithContext(ctx).
		Where(
			"business_id = ? AND (employee_id IS NULL OR employee_id = ?)",
			businessID, employeeID,
		).
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}

// translate maps storage errors onto business errors so handlers never see
// raw gorm or postgres failures.
func translate(err error, notFoundCode string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.NotFoundErr(notFoundCode)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httperr.StateConflict("duplicate_record")
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
