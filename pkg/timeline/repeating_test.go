package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starts(occ []Occurrence) []float64 {
	out := make([]float64, len(occ))
	for i, o := range occ {
		out[i] = o.Start
	}
	return out
}

func TestExpandRepeating(t *testing.T) {
	tests := []struct {
		name     string
		spec     RepeatingEventSpec
		total    float64
		expected []float64
	}{
		{
			name:     "stops at total plus duration plus cast delay",
			spec:     RepeatingEventSpec{Start: 2, Gap: 30, Duration: 10},
			total:    210,
			expected: []float64{2, 32, 62, 92, 122, 152, 182, 212},
		},
		{
			name:     "occurrence past the window end kept while under the limit",
			spec:     RepeatingEventSpec{Start: 10, Gap: 50, Duration: 20},
			total:    100,
			expected: []float64{10, 60, 110},
		},
		{
			name:     "cast delay widens the limit",
			spec:     RepeatingEventSpec{Start: 20, Gap: 50, Duration: 20, CastDelay: 1},
			total:    100,
			expected: []float64{20, 70, 120},
		},
		{
			name:     "start below floor is clamped",
			spec:     RepeatingEventSpec{Start: -40, Gap: 100, Duration: 5},
			total:    150,
			expected: []float64{2, 102},
		},
		{
			name:     "start past the limit yields nothing",
			spec:     RepeatingEventSpec{Start: 500, Gap: 30, Duration: 10},
			total:    210,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := ExpandRepeating(tt.spec, tt.total)
			if len(tt.expected) == 0 {
				assert.Empty(t, occ)
				return
			}
			assert.Equal(t, tt.expected, starts(occ))
			for i, o := range occ {
				assert.Equal(t, i, o.Index)
			}
		})
	}
}

func TestExpandRepeatingLimitBoundary(t *testing.T) {
	// limit = 100 + 20 + 0 = 120; start 120 must be excluded, 119.9 kept
	occ := ExpandRepeating(RepeatingEventSpec{Start: 20, Gap: 50, Duration: 20}, 100)
	assert.Equal(t, []float64{20, 70}, starts(occ))

	occ = ExpandRepeating(RepeatingEventSpec{Start: 19.9, Gap: 50, Duration: 20}, 100)
	assert.InDeltaSlice(t, []float64{19.9, 69.9, 119.9}, starts(occ), 1e-9)
}

func TestExpandRepeatingFloors(t *testing.T) {
	occ := ExpandRepeating(RepeatingEventSpec{Start: 2, Gap: 0, Duration: -3, CastDelay: -1}, 10)
	require.NotEmpty(t, occ)

	assert.Equal(t, DurationFloor, occ[0].Duration)
	assert.Equal(t, 0.0, occ[0].CastDelay)
	if len(occ) > 1 {
		assert.InDelta(t, GapFloor, occ[1].Start-occ[0].Start, 1e-9)
	}
	last := occ[len(occ)-1]
	assert.Less(t, last.Start, 10+DurationFloor)
}

func TestExpandRepeatingCap(t *testing.T) {
	occ := ExpandRepeating(RepeatingEventSpec{Start: 2, Gap: 0.0001, Duration: 1}, 1e9)
	assert.Len(t, occ, MaxOccurrences)
	assert.Equal(t, MaxOccurrences-1, occ[len(occ)-1].Index)
}

func TestExpandRepeatingNoDrift(t *testing.T) {
	occ := ExpandRepeating(RepeatingEventSpec{Start: 2, Gap: 0.1, Duration: 0.05}, 60)
	require.NotEmpty(t, occ)
	for _, o := range occ {
		assert.InDelta(t, 2+float64(o.Index)*0.1, o.Start, 1e-9)
	}
}

func TestOccurrenceOverflows(t *testing.T) {
	occ := ExpandRepeating(RepeatingEventSpec{Start: 2, Gap: 30, Duration: 10}, 210)
	require.Len(t, occ, 8)
	assert.False(t, occ[6].Overflows(210)) // 182..192
	assert.True(t, occ[7].Overflows(210))  // 212..222
}
