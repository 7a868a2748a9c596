package timeline

import "math"

// Normalize applies the start, gap, duration and cast delay floors used by expansion.
func (s RepeatingEventSpec) Normalize() RepeatingEventSpec {
	return RepeatingEventSpec{
		Start:     math.Max(MinElapsed, s.Start),
		CastDelay: math.Max(0, s.CastDelay),
		Gap:       math.Max(s.Gap, GapFloor),
		Duration:  math.Max(s.Duration, DurationFloor),
	}
}

// ExpandRepeating turns a repeating spec into its concrete occurrences.
//
// Occurrence i starts at start + i*gap. Expansion stops at the first occurrence whose
// start is at or past total + duration + castDelay; that occurrence is not included.
// The sequence never exceeds MaxOccurrences.
func ExpandRepeating(spec RepeatingEventSpec, total float64) []Occurrence {
	n := spec.Normalize()
	limit := total + n.Duration + n.CastDelay

	var out []Occurrence
	for i := 0; i < MaxOccurrences; i++ {
		// multiply rather than accumulate so late occurrences carry no drift
		start := n.Start + float64(i)*n.Gap
		if start >= limit {
			break
		}
		out = append(out, Occurrence{
			Index: i,
			EffectInterval: EffectInterval{
				Start:     start,
				CastDelay: n.CastDelay,
				Duration:  n.Duration,
			},
		})
	}
	return out
}
