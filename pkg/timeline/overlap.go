package timeline

import "sort"

// sweepEvent is a +1/-1 marker at the start or end of an active window.
type sweepEvent struct {
	at     float64
	weight int
}

// DetectOverlaps returns the disjoint, ascending ranges where at least two of the given
// intervals are active at the same time.
//
// Intervals with a non-positive duration are ignored. At equal instants ends are processed
// before starts, so intervals that only touch do not overlap. Ranges no wider than
// OverlapEpsilon are dropped.
func DetectOverlaps(intervals []EffectInterval) []OverlapRange {
	events := make([]sweepEvent, 0, len(intervals)*2)
	for _, iv := range intervals {
		if iv.Duration <= 0 {
			continue
		}
		events = append(events,
			sweepEvent{at: iv.ActiveStart(), weight: 1},
			sweepEvent{at: iv.ActiveEnd(), weight: -1},
		)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].weight < events[j].weight
	})

	ranges := []OverlapRange{}
	active := 0
	var openedAt float64

	for _, ev := range events {
		prev := active
		active += ev.weight

		switch {
		case prev < 2 && active >= 2:
			openedAt = ev.at
		case prev >= 2 && active < 2:
			if ev.at-openedAt > OverlapEpsilon {
				ranges = append(ranges, OverlapRange{Start: openedAt, End: ev.at})
			}
		}
	}

	return ranges
}

// TotalOverlap sums the widths of the given ranges.
func TotalOverlap(ranges []OverlapRange) float64 {
	var total float64
	for _, r := range ranges {
		total += r.Width()
	}
	return total
}
