package broadcast

import (
	"context"
	"time"

	"github.com/queuelinehq/queueline/internal/domain/appointment"
	"github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/timezone"
)

// Item kinds inside a snapshot.
const (
	ItemWalkIn      = "walk_in"
	ItemAppointment = "appointment"
)

type Item struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`

	CustomerName string `json:"customer_name"`
	ServiceName  string `json:"service_name,omitempty"`
	EmployeeID   *uint  `json:"employee_id,omitempty"`
	Status       string `json:"status"`

	// Queue position for walk-ins, zero for appointments.
	Position int `json:"position,omitempty"`

	// Estimated service start for walk-ins, booked start for appointments.
	At time.Time `json:"at"`
}

// Snapshot is the full display state for one business. It is recomputed from
// scratch on every publish; nothing is patched incrementally.
type Snapshot struct {
	BusinessID  uint      `json:"business_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
}

// Projector builds snapshots by merging the live queue with today's
// scheduled appointments.
type Projector struct {
	queueRepo queue.Repository
	apptRepo  appointment.Repository
}

func NewProjector(queueRepo queue.Repository, apptRepo appointment.Repository) *Projector {
	return &Projector{queueRepo: queueRepo, apptRepo: apptRepo}
}

func (p *Projector) Build(ctx context.Context, businessID uint) (Snapshot, error) {
	business, err := p.queueRepo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return Snapshot{}, err
	}

	loc := timezone.Location(business.Timezone)
	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	entries, err := p.queueRepo.FindActiveEntries(ctx, businessID)
	if err != nil {
		return Snapshot{}, err
	}

	appointments, err := p.apptRepo.ListScheduledForBusiness(ctx, businessID, dayStart, dayEnd)
	if err != nil {
		return Snapshot{}, err
	}

	queue.SortByPosition(entries)

	walkIns := make([]Item, 0, len(entries))
	for _, e := range entries {
		at := e.CheckInTime
		if e.EstimatedServiceTime != nil {
			at = *e.EstimatedServiceTime
		}
		item := Item{
			Kind:         ItemWalkIn,
			ID:           e.ID,
			CustomerName: e.FullName,
			EmployeeID:   e.EmployeeID,
			Status:       e.Status,
			Position:     e.PositionInQueue,
			At:           at,
		}
		if e.Service != nil {
			item.ServiceName = e.Service.Name
		}
		walkIns = append(walkIns, item)
	}

	booked := make([]Item, 0, len(appointments))
	for _, ap := range appointments {
		name := ap.FullName
		if name == "" && ap.User != nil {
			name = ap.User.Name
		}
		empID := ap.EmployeeID
		item := Item{
			Kind:         ItemAppointment,
			ID:           ap.ID,
			CustomerName: name,
			EmployeeID:   &empID,
			Status:       ap.Status,
			At:           ap.AppointmentTime,
		}
		if ap.Service != nil {
			item.ServiceName = ap.Service.Name
		}
		booked = append(booked, item)
	}

	// Walk-ins keep strict queue order regardless of their estimates, which
	// can go stale once an entry stops being re-estimated. Appointments
	// interleave by booked time.
	items := make([]Item, 0, len(walkIns)+len(booked))
	i, j := 0, 0
	for i < len(walkIns) && j < len(booked) {
		if booked[j].At.Before(walkIns[i].At) {
			items = append(items, booked[j])
			j++
		} else {
			items = append(items, walkIns[i])
			i++
		}
	}
	items = append(items, walkIns[i:]...)
	items = append(items, booked[j:]...)

	return Snapshot{
		BusinessID:  businessID,
		GeneratedAt: now,
		Items:       items,
	}, nil
}
