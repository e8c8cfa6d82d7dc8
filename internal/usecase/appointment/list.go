package appointment

import (
	"context"
	"time"

	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDay returns a business's appointments for one calendar day in the
// business timezone. When employeeID is non-zero the listing is narrowed to
// that employee.
func (uc *ListAppointments) ByDay(
	ctx context.Context,
	businessID uint,
	employeeID uint,
	day time.Time,
) ([]models.Appointment, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(business.Timezone)
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	if employeeID != 0 {
		if _, err := uc.repo.GetEmployee(ctx, businessID, employeeID); err != nil {
			return nil, err
		}
		return uc.repo.ListAppointmentsForPeriod(ctx, employeeID, start, end)
	}
	return uc.repo.ListBusinessAppointmentsForPeriod(ctx, businessID, start, end)
}

// ByMonth returns the business's appointments for a calendar month, for the
// month-at-a-glance view.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	businessID uint,
	year int,
	month time.Month,
) ([]models.Appointment, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(business.Timezone)
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	return uc.repo.ListBusinessAppointmentsForPeriod(ctx, businessID, start, end)
}
