package timeline

import "math"

// ScaleUnique multiplies (enabling) or divides (disabling) a duration by UniqueFactor
// and rounds to two decimals. Enable followed by disable drifts by at most 0.01.
func ScaleUnique(duration float64, enabling bool) float64 {
	if enabling {
		return round2(duration * UniqueFactor)
	}
	return round2(duration / UniqueFactor)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
