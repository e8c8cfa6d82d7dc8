package queue

import (
	"sort"
	"time"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

// SortByPosition orders entries in place by their queue position.
func SortByPosition(entries []models.QueueEntry) {
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].PositionInQueue < entries[b].PositionInQueue
	})
}

// Renumber assigns dense 1-based positions following the slice order. Active
// positions must always form {1..N}, so this runs after every removal.
func Renumber(entries []models.QueueEntry) {
	for i := range entries {
		entries[i].PositionInQueue = i + 1
	}
}

// Reorder moves one waiting entry to newPosition (1-based) within the active
// list and renumbers everything densely. The moved entry must still be
// waiting; newPosition must fall inside [1, len(entries)].
func Reorder(entries []models.QueueEntry, movedEntryID uint, newPosition int) error {
	if newPosition < 1 || newPosition > len(entries) {
		return httperr.Validation("position_out_of_range")
	}

	SortByPosition(entries)

	idx := -1
	for i := range entries {
		if entries[i].ID == movedEntryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return httperr.NotFoundErr("queue_entry_not_found")
	}
	if !IsWaiting(entries[idx].Status) {
		return httperr.StateConflict("entry_not_reorderable")
	}

	moved := entries[idx]
	rest := append(entries[:idx:idx], entries[idx+1:]...)

	out := make([]models.QueueEntry, 0, len(rest)+1)
	out = append(out, rest[:newPosition-1]...)
	out = append(out, moved)
	out = append(out, rest[newPosition-1:]...)
	copy(entries, out)

	Renumber(entries)
	return nil
}

// ReEstimate recomputes the linear wait estimate for every waiting entry:
// now + averageWait * zero-based index. Coarser than the duration-aware
// calculator used for availability lookups.
func ReEstimate(entries []models.QueueEntry, now time.Time, averageWaitMinutes int) {
	if averageWaitMinutes <= 0 {
		averageWaitMinutes = 30
	}

	for i := range entries {
		if entries[i].Status != models.QueueCheckedIn {
			continue
		}
		est := now.Add(time.Duration(averageWaitMinutes*i) * time.Minute)
		entries[i].EstimatedServiceTime = &est
	}
}

// Retire takes an entry out of the ordering: terminal status, position zero.
func Retire(entry *models.QueueEntry, status string, now time.Time) error {
	if err := CanTransition(entry.Status, status); err != nil {
		return err
	}

	entry.Status = status
	entry.PositionInQueue = 0
	switch status {
	case models.QueueCompleted:
		entry.ServiceEndTime = &now
	case models.QueueCancelled:
		entry.ServiceEndTime = nil
	}
	return nil
}
