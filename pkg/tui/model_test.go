package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// With a base width of 100 columns and a 300s plan, one column is three seconds.
func newTestModel(t *testing.T) (*Model, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	m := New(plan.Default(), Options{PlanID: "raid", Store: st, BaseWidth: 100})
	m.Update(tea.WindowSizeMsg{Width: labelWidth + 100, Height: 20})
	return m, st
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDragOneShotInterval(t *testing.T) {
	m, _ := newTestModel(t)

	// Opener's first bar starts at 5s, column 1 of the track.
	_, cmd := m.Update(mouse(tea.MouseActionPress, labelWidth+1, headerRows))
	require.NotNil(t, cmd, "press on a bar schedules frame ticks")
	require.NotNil(t, m.drag)
	assert.Equal(t, 5.0, m.drag.OriginalStart())

	m.Update(mouse(tea.MouseActionMotion, labelWidth+31, headerRows))
	assert.Equal(t, 5.0, m.drag.Position(), "motion alone only posts to the mailbox")

	_, cmd = m.Update(frameMsg{})
	assert.NotNil(t, cmd, "frames keep ticking while dragging")
	assert.InDelta(t, 95.0, m.drag.Position(), 1e-9)
	assert.Contains(t, m.View(), "4:55", "label stays at its pre-drag value")

	m.Update(mouse(tea.MouseActionRelease, labelWidth+31, headerRows))
	assert.Nil(t, m.drag)
	assert.True(t, m.Dirty())
	assert.InDelta(t, 95.0, m.Document().Streams[0].Intervals[0].Start, 1e-9)
	assert.Equal(t, 150.0, m.Document().Streams[0].Intervals[1].Start)

	_, cmd = m.Update(frameMsg{})
	assert.Nil(t, cmd, "ticks stop once the drag ends")
}

func TestReleaseFlushesPendingMove(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(mouse(tea.MouseActionPress, labelWidth+1, headerRows))
	m.Update(mouse(tea.MouseActionMotion, labelWidth+11, headerRows))
	m.Update(mouse(tea.MouseActionRelease, labelWidth+11, headerRows))

	assert.InDelta(t, 35.0, m.Document().Streams[0].Intervals[0].Start, 1e-9)
}

func TestDragClampsAtMinimumStart(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(mouse(tea.MouseActionPress, labelWidth+1, headerRows))
	m.Update(mouse(tea.MouseActionMotion, 0, headerRows))
	m.Update(mouse(tea.MouseActionRelease, 0, headerRows))

	assert.Equal(t, 2.0, m.Document().Streams[0].Intervals[0].Start)
}

func TestDragRepeatingOccurrenceMovesCanonicalStart(t *testing.T) {
	m, _ := newTestModel(t)

	// Pulse occurrence 1 starts at 32s, column 10.
	pulseRow := headerRows + 2
	m.Update(mouse(tea.MouseActionPress, labelWidth+11, pulseRow))
	require.NotNil(t, m.drag)
	assert.Equal(t, 1, m.target.index)
	assert.True(t, m.target.repeating)

	m.Update(mouse(tea.MouseActionMotion, labelWidth+14, pulseRow))
	m.Update(mouse(tea.MouseActionRelease, labelWidth+14, pulseRow))

	pulse := m.Document().Streams[2]
	assert.InDelta(t, 11.0, pulse.Repeating.Start, 1e-9)
	assert.Equal(t, 30.0, pulse.Repeating.Gap)
	assert.Equal(t, 2, m.selected)
}

func TestEscCancelsDrag(t *testing.T) {
	m, _ := newTestModel(t)
	before := m.Document()

	m.Update(mouse(tea.MouseActionPress, labelWidth+1, headerRows))
	m.Update(mouse(tea.MouseActionMotion, labelWidth+40, headerRows))
	m.Update(frameMsg{})
	m.Update(key("esc"))
	assert.Nil(t, m.drag)

	m.Update(mouse(tea.MouseActionRelease, labelWidth+40, headerRows))
	assert.Equal(t, before, m.Document())
	assert.False(t, m.Dirty())
}

func TestPressOutsideBarsDoesNothing(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		name string
		x, y int
	}{
		{name: "title row", x: labelWidth + 1, y: 0},
		{name: "label column", x: 2, y: headerRows},
		{name: "gap between bars", x: labelWidth + 30, y: headerRows},
		{name: "below streams", x: labelWidth + 1, y: headerRows + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := m.Update(mouse(tea.MouseActionPress, tt.x, tt.y))
			assert.Nil(t, cmd)
			assert.Nil(t, m.drag)
		})
	}
}

func TestZoomAndScroll(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("-"))
	assert.Equal(t, 0, m.zoom, "already at the coarsest level")

	m.Update(key("right"))
	assert.Equal(t, 0, m.scroll, "nothing to scroll at 1x")

	m.Update(key("+"))
	assert.Equal(t, 1, m.zoom)
	m.Update(key("right"))
	m.Update(key("right"))
	assert.Equal(t, 2*scrollStep, m.scroll)

	m.Update(key("+"))
	assert.Equal(t, 2, m.zoom)
	assert.Equal(t, 4*scrollStep, m.scroll, "left edge keeps its instant")

	for range 10 {
		m.Update(key("+"))
	}
	assert.Equal(t, 4, m.zoom)

	m.Update(key("left"))
	assert.Equal(t, 80-scrollStep, m.scroll)

	assert.Equal(t, plan.Default(), m.Document(), "zoom never changes stored data")
}

func TestDragAtZoomUsesZoomedTrack(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("+"))

	// At 2x one column is 1.5s; Opener's first bar starts at column 3.
	m.Update(mouse(tea.MouseActionPress, labelWidth+3, headerRows))
	require.NotNil(t, m.drag)
	m.Update(mouse(tea.MouseActionMotion, labelWidth+13, headerRows))
	m.Update(mouse(tea.MouseActionRelease, labelWidth+13, headerRows))

	assert.InDelta(t, 20.0, m.Document().Streams[0].Intervals[0].Start, 1e-9)
}

func TestToggleUniqueAndOverlapKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("down"))
	assert.Equal(t, 1, m.selected)

	m.Update(key("u"))
	barrier := m.Document().Streams[1]
	assert.True(t, barrier.Unique)
	assert.InDelta(t, 19.5, barrier.Intervals[0].Duration, 1e-9)

	m.Update(key("u"))
	assert.False(t, m.Document().Streams[1].Unique)

	m.Update(key("o"))
	assert.False(t, m.Document().Streams[1].CheckOverlap)
	assert.True(t, m.Dirty())
}

func TestSaveKey(t *testing.T) {
	m, st := newTestModel(t)
	m.Update(key("u"))

	_, cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.False(t, m.Dirty())
	saved, err := st.Load(context.Background(), "raid")
	require.NoError(t, err)
	assert.Equal(t, m.Document(), saved)
	assert.Contains(t, m.View(), "saved raid")
}

func TestSaveWithoutStore(t *testing.T) {
	m := New(plan.Default(), Options{PlanID: "raid"})
	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no store configured")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsStreamsAndOverlaps(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()

	for _, name := range []string{"Countdown plan", "Opener", "Barrier", "~Pulse", "overlap", "5:00"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "▀")
	assert.Contains(t, out, "0 overlaps")

	// Opener lands on Barrier's 60s window.
	m.Update(mouse(tea.MouseActionPress, labelWidth+1, headerRows))
	m.Update(mouse(tea.MouseActionRelease, labelWidth+18, headerRows))
	out = m.View()
	assert.Contains(t, out, "▀")
	assert.Contains(t, out, "1 overlaps")
	assert.Contains(t, out, "modified")
}

func TestOverlapRowStopsBeforeEndColumn(t *testing.T) {
	m, _ := newTestModel(t)
	proj := plan.Projection{
		TotalDuration: 300,
		TrackWidth:    100,
		Overlaps: []timeline.OverlapRange{
			{Start: 20, End: 30},
			{Start: 60, End: 61},
		},
	}

	r := m.overlapRow(proj, 100)
	var painted []int
	for col, kind := range r.kinds {
		if kind == cellOverlap {
			painted = append(painted, col)
		}
	}
	// 30s falls exactly on column 10, which belongs to the next three seconds.
	// A sliver narrower than a column still paints its first column.
	assert.Equal(t, []int{6, 7, 8, 9, 20}, painted)
}
