// Package memrepo is an in-memory implementation of the domain repositories,
// used by tests in place of the gorm-backed store.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

// Compile-time checks
var (
	_ appointment.Repository = (*Store)(nil)
	_ queue.Repository       = (*Store)(nil)
)

type Store struct {
	mu sync.Mutex

	Businesses   map[uint]*models.Business
	Employees    map[uint]*models.Employee
	Services     map[uint]*models.Service
	Appointments map[uint]*models.Appointment
	Entries      map[uint]*models.QueueEntry
	Schedules    map[uint][]models.WorkScheduleEntry
	Overrides    []models.ScheduleOverride

	nextID uint
}

func New() *Store {
	return &Store{
		Businesses:   make(map[uint]*models.Business),
		Employees:    make(map[uint]*models.Employee),
		Services:     make(map[uint]*models.Service),
		Appointments: make(map[uint]*models.Appointment),
		Entries:      make(map[uint]*models.QueueEntry),
		Schedules:    make(map[uint][]models.WorkScheduleEntry),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// The gorm store preloads Service on availability reads; the copies handed
// out here do the same so callers never depend on hand-set pointers.
func (s *Store) hydrateEntry(e *models.QueueEntry) {
	if e.Service != nil || e.ServiceID == nil {
		return
	}
	if svc, ok := s.Services[*e.ServiceID]; ok {
		cp := *svc
		e.Service = &cp
	}
}

func (s *Store) hydrateAppointment(ap *models.Appointment) {
	if ap.Service != nil || ap.ServiceID == nil {
		return
	}
	if svc, ok := s.Services[*ap.ServiceID]; ok {
		cp := *svc
		ap.Service = &cp
	}
}

// ---------- seeding helpers ----------

func (s *Store) AddBusiness(b models.Business) *models.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.Businesses[b.ID] = &b
	return &b
}

func (s *Store) AddEmployee(e models.Employee) *models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	if e.Status == "" {
		e.Status = models.EmployeeAvailable
	}
	s.Employees[e.ID] = &e
	return &e
}

func (s *Store) AddService(svc models.Service) *models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.id()
	}
	s.Services[svc.ID] = &svc
	return &svc
}

func (s *Store) AddAppointment(ap models.Appointment) *models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = s.id()
	}
	if ap.Status == "" {
		ap.Status = models.AppointmentScheduled
	}
	s.Appointments[ap.ID] = &ap
	return &ap
}

func (s *Store) AddEntry(e models.QueueEntry) *models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	if e.Status == "" {
		e.Status = models.QueueCheckedIn
	}
	s.Entries[e.ID] = &e
	return &e
}

// ---------- business ----------

func (s *Store) GetBusinessByID(_ context.Context, id uint) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Businesses[id]
	if !ok {
		return nil, httperr.NotFoundErr("business_not_found")
	}
	cp := *b
	return &cp, nil
}

// ---------- employees ----------

func (s *Store) GetEmployee(_ context.Context, businessID, employeeID uint) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Employees[employeeID]
	if !ok || e.BusinessID != businessID {
		return nil, httperr.NotFoundErr("employee_not_found")
	}
	cp := *e
	return &cp, nil
}

func (s *Store) ListEmployees(_ context.Context, businessID uint) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Employee
	for _, e := range s.Employees {
		if e.BusinessID == businessID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) UpdateEmployeeStatus(_ context.Context, employeeID uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Employees[employeeID]
	if !ok {
		return httperr.NotFoundErr("employee_not_found")
	}
	e.Status = status
	return nil
}

// ---------- services ----------

func (s *Store) GetService(_ context.Context, businessID, serviceID uint) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.Services[serviceID]
	if !ok || svc.BusinessID != businessID {
		return nil, httperr.NotFoundErr("service_not_found")
	}
	cp := *svc
	return &cp, nil
}

// ---------- appointments ----------

func (s *Store) GetAppointment(_ context.Context, businessID, appointmentID uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.Appointments[appointmentID]
	if !ok || ap.BusinessID != businessID {
		return nil, httperr.NotFoundErr("appointment_not_found")
	}
	cp := *ap
	return &cp, nil
}

func (s *Store) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = s.id()
	}
	cp := *ap
	s.Appointments[ap.ID] = &cp
	return nil
}

func (s *Store) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Appointments[ap.ID]; !ok {
		return httperr.NotFoundErr("appointment_not_found")
	}
	cp := *ap
	s.Appointments[ap.ID] = &cp
	return nil
}

func (s *Store) ListScheduledAppointments(_ context.Context, employeeID uint, start, end time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.EmployeeID != employeeID || ap.Status != models.AppointmentScheduled {
			continue
		}
		if ap.AppointmentTime.Before(start) || !ap.AppointmentTime.Before(end) {
			continue
		}
		cp := *ap
		s.hydrateAppointment(&cp)
		out = append(out, cp)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ListScheduledForBusiness(_ context.Context, businessID uint, start, end time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.BusinessID != businessID || ap.Status != models.AppointmentScheduled {
			continue
		}
		if ap.AppointmentTime.Before(start) || !ap.AppointmentTime.Before(end) {
			continue
		}
		cp := *ap
		s.hydrateAppointment(&cp)
		out = append(out, cp)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ListAllScheduledAfter(_ context.Context, t time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.Status == models.AppointmentScheduled && ap.EndTime.After(t) {
			out = append(out, *ap)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ListAppointmentsForPeriod(_ context.Context, employeeID uint, start, end time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.EmployeeID != employeeID {
			continue
		}
		if ap.AppointmentTime.Before(start) || !ap.AppointmentTime.Before(end) {
			continue
		}
		out = append(out, *ap)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ListBusinessAppointmentsForPeriod(_ context.Context, businessID uint, start, end time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.BusinessID != businessID {
			continue
		}
		if ap.AppointmentTime.Before(start) || !ap.AppointmentTime.Before(end) {
			continue
		}
		out = append(out, *ap)
	}
	sortByStart(out)
	return out, nil
}

// ---------- schedules ----------

func (s *Store) SetWorkSchedule(employeeID uint, entries []models.WorkScheduleEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Schedules[employeeID] = entries
}

func (s *Store) ListWorkSchedule(_ context.Context, employeeID uint) ([]models.WorkScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WorkScheduleEntry(nil), s.Schedules[employeeID]...), nil
}

func (s *Store) ListOverrides(_ context.Context, businessID, employeeID uint) ([]models.ScheduleOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScheduleOverride
	for _, ov := range s.Overrides {
		if ov.BusinessID != businessID {
			continue
		}
		if ov.EmployeeID != nil && *ov.EmployeeID != employeeID {
			continue
		}
		out = append(out, ov)
	}
	return out, nil
}

// ---------- queue entries ----------

func (s *Store) GetEntry(_ context.Context, businessID, entryID uint) (*models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Entries[entryID]
	if !ok || e.BusinessID != businessID {
		return nil, httperr.NotFoundErr("queue_entry_not_found")
	}
	cp := *e
	return &cp, nil
}

func (s *Store) FindActiveEntries(_ context.Context, businessID uint) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range s.Entries {
		if e.BusinessID == businessID && queue.IsActive(e.Status) {
			cp := *e
			s.hydrateEntry(&cp)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].PositionInQueue < out[b].PositionInQueue })
	return out, nil
}

func (s *Store) FindActiveByPhone(_ context.Context, businessID uint, phone string) (*models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Entries {
		if e.BusinessID == businessID && e.PhoneNumber == phone && queue.IsActive(e.Status) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, httperr.NotFoundErr("queue_entry_not_found")
}

func (s *Store) FindActiveAssignedTo(_ context.Context, employeeID uint) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range s.Entries {
		if e.EmployeeID != nil && *e.EmployeeID == employeeID && queue.IsActive(e.Status) {
			cp := *e
			s.hydrateEntry(&cp)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CheckInTime.Before(out[b].CheckInTime) })
	return out, nil
}

func (s *Store) CreateEntry(_ context.Context, entry *models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == 0 {
		entry.ID = s.id()
	}
	cp := *entry
	s.Entries[entry.ID] = &cp
	return nil
}

func (s *Store) UpdateEntry(_ context.Context, entry *models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Entries[entry.ID]; !ok {
		return httperr.NotFoundErr("queue_entry_not_found")
	}
	cp := *entry
	s.Entries[entry.ID] = &cp
	return nil
}

func (s *Store) SaveEntries(ctx context.Context, entries []models.QueueEntry) error {
	for i := range entries {
		if err := s.UpdateEntry(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func sortByStart(aps []models.Appointment) {
	sort.Slice(aps, func(a, b int) bool {
		return aps[a].AppointmentTime.Before(aps[b].AppointmentTime)
	})
}
