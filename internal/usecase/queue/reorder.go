package queue

import (
	"context"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
)

type ReorderQueue struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewReorderQueue(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *ReorderQueue {
	return &ReorderQueue{
		repo:          repo,
		businessLocks: businessLocks,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *ReorderQueue) Execute(
	ctx context.Context,
	businessID uint,
	movedEntryID uint,
	newPosition int,
) ([]models.QueueEntry, error) {

	business, err := uc.repo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	uc.businessLocks.Lock(businessID)
	defer uc.businessLocks.Unlock(businessID)

	entries, err := uc.repo.FindActiveEntries(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if err := domain.Reorder(entries, movedEntryID, newPosition); err != nil {
		return nil, err
	}

	now := timezone.NowIn(business.Timezone)
	domain.ReEstimate(entries, now, business.AverageWaitMinutes)

	if err := uc.repo.SaveEntries(ctx, entries); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		Action:     "queue_reordered",
		Entity:     "queue_entry",
		EntityID:   &movedEntryID,
	})

	uc.bc.Refresh(ctx, businessID)

	return entries, nil
}
