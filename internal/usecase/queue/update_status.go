package queue

import (
	"context"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
)

type UpdateEntryStatus struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewUpdateEntryStatus(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *UpdateEntryStatus {
	return &UpdateEntryStatus{
		repo:          repo,
		businessLocks: businessLocks,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *UpdateEntryStatus) Execute(
	ctx context.Context,
	businessID uint,
	entryID uint,
	newStatus string,
) (*models.QueueEntry, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	now := timezone.NowIn(business.Timezone)

	uc.businessLocks.Lock(businessID)
	defer uc.businessLocks.Unlock(businessID)

	entry, err := uc.repo.GetEntry(ctx, businessID, entryID)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case models.QueueArrived:
		if err := domain.CanTransition(entry.Status, newStatus); err != nil {
			return nil, err
		}
		entry.Status = models.QueueArrived

	case models.QueueInService:
		if err := domain.CanTransition(entry.Status, newStatus); err != nil {
			return nil, err
		}
		entry.Status = models.QueueInService
		entry.ServiceStartTime = &now
		if entry.EmployeeID != nil {
			if err := uc.repo.UpdateEmployeeStatus(ctx, *entry.EmployeeID, models.EmployeeInService); err != nil {
				return nil, err
			}
		}

	case models.QueueCompleted, models.QueueCancelled:
		wasInService := entry.Status == models.QueueInService
		if err := domain.Retire(entry, newStatus, now); err != nil {
			return nil, err
		}
		if wasInService && entry.EmployeeID != nil {
			if err := uc.repo.UpdateEmployeeStatus(ctx, *entry.EmployeeID, models.EmployeeAvailable); err != nil {
				return nil, err
			}
		}

	default:
		return nil, httperr.Validation("unknown_status")
	}

	if err := uc.repo.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	// Keep active positions dense after a retirement.
	if domain.IsTerminal(entry.Status) {
		remaining, err := uc.repo.FindActiveEntries(ctx, businessID)
		if err != nil {
			return nil, err
		}
		domain.SortByPosition(remaining)
		domain.Renumber(remaining)
		domain.ReEstimate(remaining, now, business.AverageWaitMinutes)
		if err := uc.repo.SaveEntries(ctx, remaining); err != nil {
			return nil, err
		}
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		Action:     "queue_status_" + newStatus,
		Entity:     "queue_entry",
		EntityID:   &entry.ID,
	})

	uc.bc.Refresh(ctx, businessID)

	return entry, nil
}
