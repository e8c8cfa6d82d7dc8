package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/models"
)

func waiting(id uint, pos int) models.QueueEntry {
	return models.QueueEntry{ID: id, Status: models.QueueCheckedIn, PositionInQueue: pos}
}

func positions(entries []models.QueueEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.PositionInQueue
	}
	return out
}

func ids(entries []models.QueueEntry) []uint {
	out := make([]uint, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestReorder_MoveTailToHead(t *testing.T) {
	entries := []models.QueueEntry{waiting(1, 1), waiting(2, 2), waiting(3, 3)}

	require.NoError(t, Reorder(entries, 3, 1))

	assert.Equal(t, []uint{3, 1, 2}, ids(entries))
	assert.Equal(t, []int{1, 2, 3}, positions(entries))
}

func TestReorder_Idempotent(t *testing.T) {
	entries := []models.QueueEntry{waiting(1, 1), waiting(2, 2), waiting(3, 3)}

	require.NoError(t, Reorder(entries, 2, 2))

	assert.Equal(t, []uint{1, 2, 3}, ids(entries))
	assert.Equal(t, []int{1, 2, 3}, positions(entries))
}

func TestReorder_PositionOutOfRange(t *testing.T) {
	entries := []models.QueueEntry{waiting(1, 1), waiting(2, 2)}

	err := Reorder(entries, 1, 0)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	err = Reorder(entries, 1, 3)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestReorder_UnknownEntry(t *testing.T) {
	entries := []models.QueueEntry{waiting(1, 1)}

	err := Reorder(entries, 99, 1)
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestReorder_RejectsEntryInService(t *testing.T) {
	entries := []models.QueueEntry{
		{ID: 1, Status: models.QueueInService, PositionInQueue: 1},
		waiting(2, 2),
	}

	err := Reorder(entries, 1, 2)
	assert.Equal(t, httperr.KindStateConflict, httperr.KindOf(err))
}

func TestReorder_DensityInvariantUnderSequence(t *testing.T) {
	entries := []models.QueueEntry{waiting(1, 1), waiting(2, 2), waiting(3, 3), waiting(4, 4), waiting(5, 5)}

	moves := []struct {
		id  uint
		pos int
	}{{5, 1}, {1, 5}, {3, 2}, {2, 4}, {4, 4}}

	for _, mv := range moves {
		require.NoError(t, Reorder(entries, mv.id, mv.pos))

		seen := map[int]bool{}
		for _, e := range entries {
			require.False(t, seen[e.PositionInQueue], "duplicate position %d", e.PositionInQueue)
			require.GreaterOrEqual(t, e.PositionInQueue, 1)
			require.LessOrEqual(t, e.PositionInQueue, len(entries))
			seen[e.PositionInQueue] = true
		}
	}
}

func TestReEstimate_LinearModel(t *testing.T) {
	now := time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)
	entries := []models.QueueEntry{
		waiting(1, 1),
		{ID: 2, Status: models.QueueArrived, PositionInQueue: 2},
		waiting(3, 3),
	}

	ReEstimate(entries, now, 20)

	require.NotNil(t, entries[0].EstimatedServiceTime)
	assert.Equal(t, now, *entries[0].EstimatedServiceTime)
	// Arrived entries keep their estimate untouched.
	assert.Nil(t, entries[1].EstimatedServiceTime)
	require.NotNil(t, entries[2].EstimatedServiceTime)
	assert.Equal(t, now.Add(40*time.Minute), *entries[2].EstimatedServiceTime)
}

func TestRetire_TerminalAndRenumber(t *testing.T) {
	now := time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)

	entries := []models.QueueEntry{waiting(1, 1), waiting(2, 2), waiting(3, 3)}

	entry := &entries[1]
	entry.Status = models.QueueArrived
	entry.Status = models.QueueInService
	require.NoError(t, Retire(entry, models.QueueCompleted, now))

	assert.Equal(t, models.QueueCompleted, entry.Status)
	assert.Equal(t, 0, entry.PositionInQueue)
	require.NotNil(t, entry.ServiceEndTime)

	remaining := []models.QueueEntry{entries[0], entries[2]}
	Renumber(remaining)
	assert.Equal(t, []int{1, 2}, positions(remaining))
}

func TestRetire_RejectsTerminalEntry(t *testing.T) {
	entry := &models.QueueEntry{Status: models.QueueCancelled}
	err := Retire(entry, models.QueueCompleted, time.Now())
	assert.Equal(t, httperr.KindStateConflict, httperr.KindOf(err))
}

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.QueueCheckedIn, models.QueueArrived, true},
		{models.QueueCheckedIn, models.QueueCancelled, true},
		{models.QueueCheckedIn, models.QueueInService, false},
		{models.QueueArrived, models.QueueInService, true},
		{models.QueueArrived, models.QueueCancelled, true},
		{models.QueueInService, models.QueueCompleted, true},
		{models.QueueInService, models.QueueCancelled, false},
		{models.QueueCompleted, models.QueueArrived, false},
		{models.QueueCancelled, models.QueueCheckedIn, false},
	}

	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
		}
	}
}
