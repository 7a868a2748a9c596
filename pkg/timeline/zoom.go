package timeline

// MaxGridlines caps Gridlines for tiny ticks over long windows.
const MaxGridlines = 10000

// ZoomLevel pairs a track magnification with the gridline tick used at that magnification.
type ZoomLevel struct {
	Magnification float64 `json:"magnification"`
	TickInterval  float64 `json:"tickInterval"`
}

// TrackWidth is the rendered pixel width of the full track at this level.
func (z ZoomLevel) TrackWidth(baseWidth float64) float64 {
	return z.Magnification * baseWidth
}

// ZoomLevels runs from coarse to fine. Selecting a level never changes stored data.
var ZoomLevels = []ZoomLevel{
	{Magnification: 1, TickInterval: 30},
	{Magnification: 2, TickInterval: 15},
	{Magnification: 4, TickInterval: 10},
	{Magnification: 8, TickInterval: 5},
	{Magnification: 16, TickInterval: 1},
}

// LevelAt returns ZoomLevels[i] with i clamped into range.
func LevelAt(i int) ZoomLevel {
	if i < 0 {
		i = 0
	}
	if i >= len(ZoomLevels) {
		i = len(ZoomLevels) - 1
	}
	return ZoomLevels[i]
}

// Gridline is a tick position on the track.
type Gridline struct {
	Elapsed  float64 `json:"elapsed"`
	Fraction float64 `json:"fraction"`
}

// Gridlines returns a line at every multiple of tick from 0 up to the last multiple that is
// <= total, each expressed as a fraction of the track width.
func Gridlines(tick, total float64) []Gridline {
	if tick <= 0 || total <= 0 {
		return nil
	}

	const tolerance = 1e-9
	var lines []Gridline
	for k := 0; k < MaxGridlines; k++ {
		at := float64(k) * tick
		if at > total+tolerance {
			break
		}
		lines = append(lines, Gridline{Elapsed: at, Fraction: at / total})
	}
	return lines
}
