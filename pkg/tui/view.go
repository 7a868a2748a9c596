package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// cell kinds of a rendered track row
const (
	cellEmpty = iota
	cellGrid
	cellCast
	cellActive
	cellLabel
	cellOverlap
)

type row struct {
	runes []rune
	kinds []int
}

func newRow(width int) row {
	r := row{runes: make([]rune, width), kinds: make([]int, width)}
	for i := range r.runes {
		r.runes[i] = ' '
	}
	return r
}

func (r row) set(col int, ch rune, kind int) {
	if col < 0 || col >= len(r.runes) {
		return
	}
	r.runes[col] = ch
	r.kinds[col] = kind
}

// render groups runs of equal kind so each run is styled once.
func (r row) render(style func(kind int) lipgloss.Style) string {
	var b strings.Builder
	for start := 0; start < len(r.runes); {
		end := start
		for end < len(r.runes) && r.kinds[end] == r.kinds[start] {
			end++
		}
		b.WriteString(style(r.kinds[start]).Render(string(r.runes[start:end])))
		start = end
	}
	return b.String()
}

func (m *Model) View() string {
	proj := m.project(m.doc)
	vw := m.viewportWidth()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s  zoom %gx", proj.ChartTitle,
		timeline.FormatClock(proj.TotalDuration), proj.Zoom.Magnification)))
	b.WriteByte('\n')

	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(m.ruler(proj, vw).render(func(int) lipgloss.Style { return mutedStyle }))
	b.WriteByte('\n')

	for i, view := range proj.Streams {
		b.WriteString(m.streamLabel(i, view))
		r := m.streamRow(proj, view, i, vw)
		b.WriteString(r.render(func(kind int) lipgloss.Style {
			switch kind {
			case cellCast:
				return castStyle(view.Color)
			case cellActive:
				return barStyle(view.Color)
			case cellLabel:
				return barLabelStyle(view.Color)
			default:
				return mutedStyle
			}
		}))
		b.WriteByte('\n')
	}

	b.WriteString(padLabel("overlap"))
	b.WriteString(m.overlapRow(proj, vw).render(func(kind int) lipgloss.Style {
		if kind == cellOverlap {
			return overlapStyle
		}
		return mutedStyle
	}))
	b.WriteByte('\n')

	b.WriteString(m.statusLine(proj))
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render("drag bars · +/- zoom · ←/→ scroll · ↑/↓ select · u unique · o overlap · s save · q quit"))
	return b.String()
}

// column maps an elapsed time to a viewport column.
func (m *Model) column(elapsed float64, proj plan.Projection) int {
	if proj.TotalDuration <= 0 {
		return 0
	}
	return int(math.Floor(elapsed/proj.TotalDuration*proj.TrackWidth)) - m.scroll
}

func (m *Model) ruler(proj plan.Projection, vw int) row {
	r := newRow(vw)
	nextFree := 0
	for _, g := range proj.Gridlines {
		col := m.column(g.Elapsed, proj)
		if col < 0 || col >= vw {
			continue
		}
		r.set(col, '┊', cellGrid)
		label := timeline.FormatClock(timeline.ToRemaining(g.Elapsed, proj.TotalDuration))
		if col+1 < nextFree || col+1+len(label) > vw {
			continue
		}
		for j, ch := range label {
			r.set(col+1+j, ch, cellGrid)
		}
		nextFree = col + 2 + len(label)
	}
	return r
}

func (m *Model) streamRow(proj plan.Projection, view plan.StreamView, streamIdx, vw int) row {
	r := newRow(vw)
	for _, g := range proj.Gridlines {
		r.set(m.column(g.Elapsed, proj), '·', cellGrid)
	}
	for _, bar := range view.Bars {
		first, last := barColumns(bar)
		castEnd := int(math.Floor(bar.X + bar.CastWidth))
		for col := first; col <= last; col++ {
			if col < castEnd {
				r.set(col-m.scroll, '░', cellCast)
			} else {
				r.set(col-m.scroll, '█', cellActive)
			}
		}

		label := bar.Label
		if m.drag != nil && m.target.stream == streamIdx && m.target.index == bar.Index {
			label = m.drag.Label()
		}
		if last-castEnd+1 < len(label) {
			continue
		}
		for j, ch := range label {
			r.set(castEnd+j-m.scroll, ch, cellLabel)
		}
	}
	return r
}

func (m *Model) overlapRow(proj plan.Projection, vw int) row {
	r := newRow(vw)
	for _, o := range proj.Overlaps {
		first := m.column(o.Start, proj)
		last := max(first, m.column(o.End, proj)-1)
		for col := first; col <= last; col++ {
			r.set(col, '▀', cellOverlap)
		}
	}
	return r
}

func (m *Model) streamLabel(i int, view plan.StreamView) string {
	name := view.Name
	if view.Unique {
		name += "*"
	}
	if !view.CheckOverlap {
		name = "~" + name
	}
	label := padLabel(name)
	if i == m.selected {
		return selectedStyle.Render(label[:len(label)-1]) + " "
	}
	return label
}

func padLabel(s string) string {
	runes := []rune(s)
	if len(runes) > labelWidth-1 {
		runes = runes[:labelWidth-1]
	}
	return string(runes) + strings.Repeat(" ", labelWidth-len(runes))
}

func (m *Model) statusLine(proj plan.Projection) string {
	switch {
	case m.drag != nil:
		return statusStyle.Render(fmt.Sprintf("dragging %s from %s to %.1fs", m.doc.Streams[m.target.stream].Name,
			m.drag.Label(), m.drag.Position()))
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	}
	parts := []string{fmt.Sprintf("%d overlaps, %.1fs shared", len(proj.Overlaps), proj.OverlapSeconds)}
	if m.dirty {
		parts = append(parts, "modified")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}
