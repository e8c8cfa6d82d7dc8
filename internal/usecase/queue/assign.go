package queue

import (
	"context"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	domain "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/models"
)

type AssignEntryInput struct {
	BusinessID uint
	EntryID    uint

	// Nil leaves the field untouched; zero clears the assignment.
	EmployeeID *uint
	ServiceID  *uint
}

// AssignEntry changes an entry's employee or service, which is only legal
// while the customer is still waiting.
type AssignEntry struct {
	repo          domain.Repository
	businessLocks *locks.Keyed
	audit         *audit.Dispatcher
	bc            *broadcast.Broadcaster
}

func NewAssignEntry(
	repo domain.Repository,
	businessLocks *locks.Keyed,
	auditDisp *audit.Dispatcher,
	bc *broadcast.Broadcaster,
) *AssignEntry {
	return &AssignEntry{
		repo:          repo,
		businessLocks: businessLocks,
		audit:         auditDisp,
		bc:            bc,
	}
}

func (uc *AssignEntry) Execute(
	ctx context.Context,
	in AssignEntryInput,
) (*models.QueueEntry, error) {

	uc.businessLocks.Lock(in.BusinessID)
	defer uc.businessLocks.Unlock(in.BusinessID)

	entry, err := uc.repo.GetEntry(ctx, in.BusinessID, in.EntryID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanReassign(entry.Status); err != nil {
		return nil, err
	}

	if in.ServiceID != nil {
		if *in.ServiceID == 0 {
			entry.ServiceID = nil
		} else {
			if _, err := uc.repo.GetService(ctx, in.BusinessID, *in.ServiceID); err != nil {
				return nil, err
			}
			entry.ServiceID = in.ServiceID
		}
	}

	if in.EmployeeID != nil {
		if *in.EmployeeID == 0 {
			entry.EmployeeID = nil
		} else {
			employees, err := uc.repo.ListEmployees(ctx, in.BusinessID)
			if err != nil {
				return nil, err
			}
			var found *models.Employee
			for i := range employees {
				if employees[i].ID == *in.EmployeeID {
					found = &employees[i]
					break
				}
			}
			if found == nil {
				return nil, httperr.NotFoundErr("employee_not_found")
			}
			var serviceID uint
			if entry.ServiceID != nil {
				serviceID = *entry.ServiceID
			}
			if !found.CanPerform(serviceID) {
				return nil, httperr.Validation("employee_cannot_perform_service")
			}
			entry.EmployeeID = in.EmployeeID
		}
	}

	if err := uc.repo.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		Action:     "queue_entry_assigned",
		Entity:     "queue_entry",
		EntityID:   &entry.ID,
	})

	uc.bc.Refresh(ctx, in.BusinessID)

	return entry, nil
}
