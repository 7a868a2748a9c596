package timeline

// Engine constants. All times are seconds.
const (
	// MinElapsed is the floor for every elapsed value used for display or interaction.
	MinElapsed = 2.0

	// GapFloor and DurationFloor keep degenerate repeating specs finite.
	GapFloor      = 0.1
	DurationFloor = 0.001

	// MaxOccurrences bounds a repeating expansion regardless of its inputs.
	MaxOccurrences = 1000

	// OverlapEpsilon is the minimum width of an emitted overlap range.
	OverlapEpsilon = 0.001

	// UniqueFactor is the toggle factor applied by ScaleUnique.
	UniqueFactor = 1.3
)

// EffectInterval is one concrete occurrence of an action.
// Its active window is [Start+CastDelay, Start+CastDelay+Duration).
type EffectInterval struct {
	Start     float64 `json:"start" yaml:"start"`
	CastDelay float64 `json:"castDelay" yaml:"cast_delay"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// ActiveStart is the instant the effect becomes visible.
func (e EffectInterval) ActiveStart() float64 {
	return e.Start + e.CastDelay
}

// ActiveEnd is the exclusive end of the active window.
func (e EffectInterval) ActiveEnd() float64 {
	return e.Start + e.CastDelay + e.Duration
}

// Overflows reports whether the active window runs past the end of the countdown.
func (e EffectInterval) Overflows(total float64) bool {
	return e.ActiveEnd() > total
}

// RepeatingEventSpec describes the progression start + i*gap, i = 0,1,2,...
type RepeatingEventSpec struct {
	Start     float64 `json:"start" yaml:"start"`
	CastDelay float64 `json:"castDelay" yaml:"cast_delay"`
	Gap       float64 `json:"gap" yaml:"gap"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// Occurrence is one expanded element of a RepeatingEventSpec.
type Occurrence struct {
	Index int `json:"index"`
	EffectInterval
}

// OverlapRange is a maximal span where two or more intervals are active.
type OverlapRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Width returns End - Start.
func (r OverlapRange) Width() float64 {
	return r.End - r.Start
}
