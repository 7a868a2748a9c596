package plan

import "github.com/leowmjw/go-countdown-timeline/pkg/timeline"

// DefaultBaseWidth is the unzoomed track width in pixels.
const DefaultBaseWidth = 1000.0

// Bar is one laid-out interval. X and widths are in track pixels at the projected zoom.
type Bar struct {
	Index       int     `json:"index"`
	Start       float64 `json:"start"`
	CastDelay   float64 `json:"castDelay"`
	Duration    float64 `json:"duration"`
	ActiveStart float64 `json:"activeStart"`
	ActiveEnd   float64 `json:"activeEnd"`
	Remaining   float64 `json:"remaining"`
	Label       string  `json:"label"`
	Overflows   bool    `json:"overflows"`
	X           float64 `json:"x"`
	CastWidth   float64 `json:"castWidth"`
	ActiveWidth float64 `json:"activeWidth"`
}

// StreamView is a stream with its bars resolved.
type StreamView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	Color        string `json:"color,omitempty"`
	CheckOverlap bool   `json:"checkOverlap"`
	Unique       bool   `json:"unique"`
	Bars         []Bar  `json:"bars"`
}

// Projection is everything a renderer needs for one frame.
type Projection struct {
	ChartTitle     string                  `json:"chartTitle"`
	TotalDuration  float64                 `json:"totalDuration"`
	ZoomIndex      int                     `json:"zoomIndex"`
	Zoom           timeline.ZoomLevel      `json:"zoom"`
	TrackWidth     float64                 `json:"trackWidth"`
	Gridlines      []timeline.Gridline     `json:"gridlines"`
	Streams        []StreamView            `json:"streams"`
	Overlaps       []timeline.OverlapRange `json:"overlaps"`
	OverlapSeconds float64                 `json:"overlapSeconds"`
}

// Project derives the render view of doc at the given zoom level.
func Project(doc Document, zoomIndex int, baseWidth float64) Projection {
	if baseWidth <= 0 {
		baseWidth = DefaultBaseWidth
	}
	if zoomIndex < 0 {
		zoomIndex = 0
	}
	if zoomIndex >= len(timeline.ZoomLevels) {
		zoomIndex = len(timeline.ZoomLevels) - 1
	}
	zoom := timeline.LevelAt(zoomIndex)
	total := doc.TotalDuration
	width := zoom.TrackWidth(baseWidth)

	p := Projection{
		ChartTitle:    doc.ChartTitle,
		TotalDuration: total,
		ZoomIndex:     zoomIndex,
		Zoom:          zoom,
		TrackWidth:    width,
		Gridlines:     timeline.Gridlines(zoom.TickInterval, total),
		Streams:       make([]StreamView, 0, len(doc.Streams)),
	}

	for _, s := range doc.Streams {
		view := StreamView{
			ID:           s.ID,
			Name:         s.Name,
			Kind:         s.Kind,
			Color:        s.Color,
			CheckOverlap: s.CheckOverlap,
			Unique:       s.Unique,
		}
		switch s.Kind {
		case KindRepeating:
			for _, occ := range timeline.ExpandRepeating(s.Repeating, total) {
				view.Bars = append(view.Bars, newBar(occ.Index, occ.EffectInterval, total, width))
			}
		default:
			for i, iv := range s.Intervals {
				view.Bars = append(view.Bars, newBar(i, iv, total, width))
			}
		}
		p.Streams = append(p.Streams, view)
	}

	p.Overlaps = timeline.DetectOverlaps(doc.OverlapIntervals())
	p.OverlapSeconds = timeline.TotalOverlap(p.Overlaps)
	return p
}

func newBar(index int, iv timeline.EffectInterval, total, width float64) Bar {
	remaining := timeline.ToRemaining(iv.Start, total)
	b := Bar{
		Index:       index,
		Start:       iv.Start,
		CastDelay:   iv.CastDelay,
		Duration:    iv.Duration,
		ActiveStart: iv.ActiveStart(),
		ActiveEnd:   iv.ActiveEnd(),
		Remaining:   remaining,
		Label:       timeline.FormatClock(remaining),
		Overflows:   iv.Overflows(total),
	}
	if total > 0 {
		b.X = iv.Start / total * width
		b.CastWidth = iv.CastDelay / total * width
		b.ActiveWidth = iv.Duration / total * width
	}
	return b
}
