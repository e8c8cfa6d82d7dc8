package appointment

import (
	"context"
	"time"

	domain "github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/availability"
	"github.com/queuelinehq/queueline/internal/domain/schedule"
	"github.com/queuelinehq/queueline/internal/timezone"
)

const slotStep = 15 * time.Minute

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DaySlots lists the bookable start times for one employee on one day:
// working intervals minus existing bookings, stepped on a 15-minute grid.
type DaySlots struct {
	repo domain.Repository
}

func NewDaySlots(repo domain.Repository) *DaySlots {
	return &DaySlots{repo: repo}
}

func (uc *DaySlots) Execute(
	ctx context.Context,
	businessID uint,
	employeeID uint,
	serviceID *uint,
	day time.Time,
) ([]Slot, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetEmployee(ctx, businessID, employeeID); err != nil {
		return nil, err
	}

	durationMin := availability.DefaultServiceMinutes
	if serviceID != nil {
		service, err := uc.repo.GetService(ctx, businessID, *serviceID)
		if err != nil {
			return nil, err
		}
		if service.DurationMin > 0 {
			durationMin = service.DurationMin
		}
	}
	duration := time.Duration(durationMin) * time.Minute

	loc := timezone.Location(business.Timezone)
	d := day.In(loc)
	dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var working []schedule.Interval
	if business.Open24Hours() {
		working = []schedule.Interval{{Start: dayStart, End: dayEnd}}
	} else {
		entries, err := uc.repo.ListWorkSchedule(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		overrides, err := uc.repo.ListOverrides(ctx, businessID, employeeID)
		if err != nil {
			return nil, err
		}
		working = schedule.WorkingIntervals(entries, overrides, loc, dayStart, dayEnd)
	}
	if len(working) == 0 {
		return nil, nil
	}

	// Bookings that started the previous day can still blot out the morning.
	existing, err := uc.repo.ListScheduledAppointments(ctx, employeeID, dayStart.AddDate(0, 0, -1), dayEnd)
	if err != nil {
		return nil, err
	}

	busy := make([]schedule.Interval, 0, len(existing))
	for _, ap := range existing {
		busy = append(busy, schedule.Interval{Start: ap.AppointmentTime, End: ap.EndTime})
	}

	free := schedule.Subtract(working, busy)

	now := timezone.NowIn(business.Timezone)

	var slots []Slot
	for _, iv := range free {
		for start := alignUp(iv.Start); !start.Add(duration).After(iv.End); start = start.Add(slotStep) {
			if start.Before(now) {
				continue
			}
			slots = append(slots, Slot{Start: start, End: start.Add(duration)})
		}
	}
	return slots, nil
}

func alignUp(t time.Time) time.Time {
	aligned := t.Truncate(slotStep)
	if aligned.Before(t) {
		aligned = aligned.Add(slotStep)
	}
	return aligned
}
