package schedule

import (
	"time"

	"github.com/queuelinehq/queueline/internal/models"
)

// parseHM anchors a "15:04" wall-clock string on the given calendar day in
// the business's location.
func parseHM(hm string, day time.Time, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), true
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ExpandWorkSchedule turns one weekly template entry into concrete working
// intervals inside [winStart, winEnd). A configured lunch break splits each
// day into two intervals.
func ExpandWorkSchedule(
	entry models.WorkScheduleEntry,
	loc *time.Location,
	winStart time.Time,
	winEnd time.Time,
) []Interval {

	if !entry.IsWorking || entry.StartTime == "" || entry.EndTime == "" {
		return nil
	}

	var out []Interval

	for day := startOfDay(winStart, loc); day.Before(winEnd); day = day.AddDate(0, 0, 1) {
		if int(day.Weekday()) != entry.Weekday {
			continue
		}

		workStart, ok1 := parseHM(entry.StartTime, day, loc)
		workEnd, ok2 := parseHM(entry.EndTime, day, loc)
		if !ok1 || !ok2 || !workEnd.After(workStart) {
			continue
		}

		pieces := []Interval{{Start: workStart, End: workEnd}}

		if entry.LunchStart != "" && entry.LunchEnd != "" {
			lunchStart, lok1 := parseHM(entry.LunchStart, day, loc)
			lunchEnd, lok2 := parseHM(entry.LunchEnd, day, loc)
			if lok1 && lok2 && lunchEnd.After(lunchStart) {
				pieces = Subtract(pieces, []Interval{{Start: lunchStart, End: lunchEnd}})
			}
		}

		for _, p := range pieces {
			if clipped, ok := p.Clip(winStart, winEnd); ok {
				out = append(out, clipped)
			}
		}
	}

	return out
}

// ExpandOverride generates the concrete instances of a dated override inside
// [winStart, winEnd). Every instance keeps the original duration.
//
// Monthly and yearly repeats preserve the day of month; when a cycle's target
// month has no such day (e.g. Jan 31 -> February) that cycle is skipped, not
// wrapped to a neighbouring day.
func ExpandOverride(
	ov models.ScheduleOverride,
	winStart time.Time,
	winEnd time.Time,
) []Interval {

	duration := ov.EndDate.Sub(ov.StartDate)
	if duration <= 0 {
		return nil
	}

	add := func(out []Interval, start time.Time) []Interval {
		iv := Interval{Start: start, End: start.Add(duration)}
		if clipped, ok := iv.Clip(winStart, winEnd); ok {
			out = append(out, clipped)
		}
		return out
	}

	var out []Interval

	switch ov.RepeatFrequency {
	case models.RepeatNone, "":
		out = add(out, ov.StartDate)

	case models.RepeatDaily, models.RepeatWeekly:
		step := 1
		if ov.RepeatFrequency == models.RepeatWeekly {
			step = 7
		}
		for start := ov.StartDate; start.Before(winEnd); start = start.AddDate(0, 0, step) {
			out = add(out, start)
		}

	case models.RepeatMonthly:
		base := ov.StartDate
		for i := 0; ; i++ {
			anchor := time.Date(base.Year(), base.Month()+time.Month(i), 1, 0, 0, 0, 0, base.Location())
			if !anchor.Before(winEnd) {
				break
			}
			candidate := time.Date(
				anchor.Year(), anchor.Month(), base.Day(),
				base.Hour(), base.Minute(), base.Second(), 0,
				base.Location(),
			)
			// Normalization past month end means the day does not exist.
			if candidate.Month() != anchor.Month() {
				continue
			}
			out = add(out, candidate)
		}

	case models.RepeatYearly:
		base := ov.StartDate
		for i := 0; ; i++ {
			anchor := time.Date(base.Year()+i, base.Month(), 1, 0, 0, 0, 0, base.Location())
			if !anchor.Before(winEnd) {
				break
			}
			candidate := time.Date(
				anchor.Year(), base.Month(), base.Day(),
				base.Hour(), base.Minute(), base.Second(), 0,
				base.Location(),
			)
			if candidate.Month() != base.Month() {
				continue
			}
			out = add(out, candidate)
		}
	}

	return out
}

// WorkingIntervals layers overrides over the weekly template: extra
// availability unions in, closures subtract.
func WorkingIntervals(
	entries []models.WorkScheduleEntry,
	overrides []models.ScheduleOverride,
	loc *time.Location,
	winStart time.Time,
	winEnd time.Time,
) []Interval {

	var base []Interval
	for _, entry := range entries {
		base = append(base, ExpandWorkSchedule(entry, loc, winStart, winEnd)...)
	}

	var closures []Interval
	for _, ov := range overrides {
		instances := ExpandOverride(ov, winStart, winEnd)
		if ov.Effect == models.EffectExtra {
			base = append(base, instances...)
		} else {
			closures = append(closures, instances...)
		}
	}

	return Subtract(base, closures)
}
