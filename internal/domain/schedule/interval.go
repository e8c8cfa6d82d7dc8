package schedule

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) range of absolute instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) IsZero() bool {
	return !i.End.After(i.Start)
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Clip bounds the interval to the window. ok is false when nothing remains.
func (i Interval) Clip(winStart, winEnd time.Time) (Interval, bool) {
	if i.Start.Before(winStart) {
		i.Start = winStart
	}
	if i.End.After(winEnd) {
		i.End = winEnd
	}
	if i.IsZero() {
		return Interval{}, false
	}
	return i, true
}

// Merge sorts intervals by start and coalesces touching or overlapping ones.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Subtract removes every cut range from the base set.
func Subtract(base []Interval, cuts []Interval) []Interval {
	if len(cuts) == 0 {
		return Merge(base)
	}

	cuts = Merge(cuts)
	var out []Interval

	for _, iv := range Merge(base) {
		remaining := []Interval{iv}
		for _, cut := range cuts {
			var next []Interval
			for _, r := range remaining {
				if !r.Overlaps(cut) {
					next = append(next, r)
					continue
				}
				if cut.Start.After(r.Start) {
					next = append(next, Interval{Start: r.Start, End: cut.Start})
				}
				if cut.End.Before(r.End) {
					next = append(next, Interval{Start: cut.End, End: r.End})
				}
			}
			remaining = next
		}
		out = append(out, remaining...)
	}
	return Merge(out)
}

// ContainsRange reports whether [start, end) is fully covered by the union of
// the given intervals.
func ContainsRange(intervals []Interval, start, end time.Time) bool {
	for _, iv := range Merge(intervals) {
		if !iv.Start.After(start) && !iv.End.Before(end) {
			return true
		}
	}
	return false
}
