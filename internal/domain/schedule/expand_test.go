package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuelinehq/queueline/internal/models"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestExpandWorkSchedule_WeeklyAnchors(t *testing.T) {
	entry := models.WorkScheduleEntry{
		Weekday:   int(time.Monday),
		StartTime: "09:00",
		EndTime:   "17:00",
		IsWorking: true,
	}

	// Two full weeks: exactly two Mondays.
	winStart := date(2025, time.March, 3, 0, 0) // a Monday
	winEnd := winStart.AddDate(0, 0, 14)

	got := ExpandWorkSchedule(entry, time.UTC, winStart, winEnd)
	require.Len(t, got, 2)
	assert.Equal(t, date(2025, time.March, 3, 9, 0), got[0].Start)
	assert.Equal(t, date(2025, time.March, 3, 17, 0), got[0].End)
	assert.Equal(t, date(2025, time.March, 10, 9, 0), got[1].Start)
}

func TestExpandWorkSchedule_LunchSplitsDay(t *testing.T) {
	entry := models.WorkScheduleEntry{
		Weekday:    int(time.Tuesday),
		StartTime:  "08:00",
		EndTime:    "18:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
		IsWorking:  true,
	}

	winStart := date(2025, time.March, 4, 0, 0) // a Tuesday
	winEnd := winStart.AddDate(0, 0, 1)

	got := ExpandWorkSchedule(entry, time.UTC, winStart, winEnd)
	require.Len(t, got, 2)
	assert.Equal(t, date(2025, time.March, 4, 8, 0), got[0].Start)
	assert.Equal(t, date(2025, time.March, 4, 12, 0), got[0].End)
	assert.Equal(t, date(2025, time.March, 4, 13, 0), got[1].Start)
	assert.Equal(t, date(2025, time.March, 4, 18, 0), got[1].End)
}

func TestExpandWorkSchedule_NotWorking(t *testing.T) {
	entry := models.WorkScheduleEntry{
		Weekday:   int(time.Monday),
		StartTime: "09:00",
		EndTime:   "17:00",
		IsWorking: false,
	}

	got := ExpandWorkSchedule(entry, time.UTC, date(2025, time.March, 3, 0, 0), date(2025, time.March, 10, 0, 0))
	assert.Empty(t, got)
}

func TestExpandOverride_NoneRoundTrip(t *testing.T) {
	ov := models.ScheduleOverride{
		StartDate:       date(2025, time.May, 1, 10, 0),
		EndDate:         date(2025, time.May, 1, 12, 0),
		RepeatFrequency: models.RepeatNone,
	}

	// Intersecting window: exactly one instance.
	got := ExpandOverride(ov, date(2025, time.May, 1, 0, 0), date(2025, time.May, 2, 0, 0))
	require.Len(t, got, 1)
	assert.Equal(t, ov.StartDate, got[0].Start)
	assert.Equal(t, ov.EndDate, got[0].End)

	// Disjoint window: zero instances.
	got = ExpandOverride(ov, date(2025, time.May, 2, 0, 0), date(2025, time.May, 3, 0, 0))
	assert.Empty(t, got)
}

func TestExpandOverride_DailyAndWeekly(t *testing.T) {
	ov := models.ScheduleOverride{
		StartDate:       date(2025, time.June, 1, 9, 0),
		EndDate:         date(2025, time.June, 1, 10, 0),
		RepeatFrequency: models.RepeatDaily,
	}

	got := ExpandOverride(ov, date(2025, time.June, 1, 0, 0), date(2025, time.June, 4, 0, 0))
	require.Len(t, got, 3)
	for i, iv := range got {
		assert.Equal(t, date(2025, time.June, 1+i, 9, 0), iv.Start)
		assert.Equal(t, time.Hour, iv.End.Sub(iv.Start))
	}

	ov.RepeatFrequency = models.RepeatWeekly
	got = ExpandOverride(ov, date(2025, time.June, 1, 0, 0), date(2025, time.June, 16, 0, 0))
	require.Len(t, got, 3)
	assert.Equal(t, date(2025, time.June, 8, 9, 0), got[1].Start)
	assert.Equal(t, date(2025, time.June, 15, 9, 0), got[2].Start)
}

func TestExpandOverride_MonthlySkipsMissingDay(t *testing.T) {
	ov := models.ScheduleOverride{
		StartDate:       date(2025, time.January, 31, 9, 0),
		EndDate:         date(2025, time.January, 31, 17, 0),
		RepeatFrequency: models.RepeatMonthly,
	}

	got := ExpandOverride(ov, date(2025, time.January, 1, 0, 0), date(2025, time.May, 1, 0, 0))

	// Jan 31, Mar 31 — February has no 31st and is skipped, April ends on 30.
	require.Len(t, got, 2)
	assert.Equal(t, date(2025, time.January, 31, 9, 0), got[0].Start)
	assert.Equal(t, date(2025, time.March, 31, 9, 0), got[1].Start)
}

func TestExpandOverride_YearlySkipsLeapDay(t *testing.T) {
	ov := models.ScheduleOverride{
		StartDate:       date(2024, time.February, 29, 0, 0),
		EndDate:         date(2024, time.February, 29, 23, 0),
		RepeatFrequency: models.RepeatYearly,
	}

	got := ExpandOverride(ov, date(2024, time.January, 1, 0, 0), date(2029, time.January, 1, 0, 0))

	// Only 2024 and 2028 are leap years inside the window.
	require.Len(t, got, 2)
	assert.Equal(t, 2024, got[0].Start.Year())
	assert.Equal(t, 2028, got[1].Start.Year())
}

func TestWorkingIntervals_ClosureSubtractsExtraAdds(t *testing.T) {
	entries := []models.WorkScheduleEntry{{
		Weekday:   int(time.Wednesday),
		StartTime: "09:00",
		EndTime:   "17:00",
		IsWorking: true,
	}}

	overrides := []models.ScheduleOverride{
		{
			// Holiday closure over lunch hours.
			StartDate:       date(2025, time.March, 5, 12, 0),
			EndDate:         date(2025, time.March, 5, 14, 0),
			RepeatFrequency: models.RepeatNone,
			Effect:          models.EffectClosure,
		},
		{
			// Extra evening shift.
			StartDate:       date(2025, time.March, 5, 19, 0),
			EndDate:         date(2025, time.March, 5, 21, 0),
			RepeatFrequency: models.RepeatNone,
			Effect:          models.EffectExtra,
		},
	}

	winStart := date(2025, time.March, 5, 0, 0) // a Wednesday
	got := WorkingIntervals(entries, overrides, time.UTC, winStart, winStart.AddDate(0, 0, 1))

	require.Len(t, got, 3)
	assert.Equal(t, date(2025, time.March, 5, 9, 0), got[0].Start)
	assert.Equal(t, date(2025, time.March, 5, 12, 0), got[0].End)
	assert.Equal(t, date(2025, time.March, 5, 14, 0), got[1].Start)
	assert.Equal(t, date(2025, time.March, 5, 17, 0), got[1].End)
	assert.Equal(t, date(2025, time.March, 5, 19, 0), got[2].Start)
	assert.Equal(t, date(2025, time.March, 5, 21, 0), got[2].End)
}

func TestContainsRange(t *testing.T) {
	intervals := []Interval{
		{Start: date(2025, time.March, 5, 9, 0), End: date(2025, time.March, 5, 12, 0)},
		{Start: date(2025, time.March, 5, 12, 0), End: date(2025, time.March, 5, 17, 0)},
	}

	// Touching intervals merge, so a range across the seam is covered.
	assert.True(t, ContainsRange(intervals, date(2025, time.March, 5, 11, 30), date(2025, time.March, 5, 12, 30)))
	assert.True(t, ContainsRange(intervals, date(2025, time.March, 5, 9, 0), date(2025, time.March, 5, 17, 0)))
	assert.False(t, ContainsRange(intervals, date(2025, time.March, 5, 16, 30), date(2025, time.March, 5, 17, 30)))
}

func TestSubtract_SplitsAroundCut(t *testing.T) {
	base := []Interval{{Start: date(2025, time.March, 5, 9, 0), End: date(2025, time.March, 5, 17, 0)}}
	cuts := []Interval{{Start: date(2025, time.March, 5, 12, 0), End: date(2025, time.March, 5, 13, 0)}}

	got := Subtract(base, cuts)
	require.Len(t, got, 2)
	assert.Equal(t, date(2025, time.March, 5, 12, 0), got[0].End)
	assert.Equal(t, date(2025, time.March, 5, 13, 0), got[1].Start)
}
