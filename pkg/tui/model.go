// Package tui is the interactive terminal editor for a plan.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

const (
	// labelWidth is the stream-name column to the left of the track.
	labelWidth = 14
	// headerRows sits above the first stream row: title and ruler.
	headerRows = 2
	// frameInterval paces drag updates to the display rate.
	frameInterval = time.Second / 60
	scrollStep    = 5
)

type frameMsg struct{}

type savedMsg struct {
	err error
}

// Options configures a Model.
type Options struct {
	PlanID    string
	Store     store.DocumentStore
	Logger    *slog.Logger
	BaseWidth int
	Zoom      int
}

// dragTarget identifies the bar under a drag.
type dragTarget struct {
	stream    int
	index     int
	repeating bool
}

// Model is the Bubble Tea model of the editor. It owns the document while running.
type Model struct {
	doc    plan.Document
	planID string
	store  store.DocumentStore
	logger *slog.Logger

	baseWidth int
	zoom      int
	scroll    int
	selected  int

	width  int
	height int

	drag   *timeline.DragSession
	target dragTarget

	dirty  bool
	status string
	err    error
}

// New creates an editor over doc.
func New(doc plan.Document, opts Options) *Model {
	if opts.BaseWidth <= 0 {
		opts.BaseWidth = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Model{
		doc:       doc,
		planID:    opts.PlanID,
		store:     opts.Store,
		logger:    opts.Logger,
		baseWidth: opts.BaseWidth,
		zoom:      clampZoom(opts.Zoom),
		width:     labelWidth + opts.BaseWidth,
		height:    headerRows + len(doc.Streams) + 4,
	}
}

// Run starts the editor full screen with mouse motion reporting.
func Run(ctx context.Context, m *Model) (*Model, error) {
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return m, fmt.Errorf("editor: %w", err)
	}
	return final.(*Model), nil
}

// Document returns the current document.
func (m *Model) Document() plan.Document {
	return m.doc
}

// Dirty reports unsaved changes.
func (m *Model) Dirty() bool {
	return m.dirty
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func frameTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.clampScroll()
		return m, nil
	case frameMsg:
		if m.drag == nil {
			return m, nil
		}
		m.drag.Frame()
		return m, frameTickCmd()
	case savedMsg:
		if typed.err != nil {
			m.err = typed.err
			m.status = "save failed"
			return m, nil
		}
		m.err = nil
		m.dirty = false
		m.status = "saved " + m.planID
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(typed)
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		if m.drag != nil {
			m.drag.Cancel()
			m.drag = nil
			m.status = "drag cancelled"
		}
	case "+", "=":
		m.setZoom(m.zoom + 1)
	case "-", "_":
		m.setZoom(m.zoom - 1)
	case "left", "h":
		m.scroll -= scrollStep
		m.clampScroll()
	case "right", "l":
		m.scroll += scrollStep
		m.clampScroll()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.doc.Streams)-1 {
			m.selected++
		}
	case "u":
		if s, ok := m.selectedStream(); ok {
			m.apply(plan.Edit{Op: plan.OpToggleUnique, StreamID: s.ID, Flag: !s.Unique})
		}
	case "o":
		if s, ok := m.selectedStream(); ok {
			m.apply(plan.Edit{Op: plan.OpSetCheckOverlap, StreamID: s.ID, Flag: !s.CheckOverlap})
		}
	case "s":
		return m.saveCmd()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.drag != nil {
			return nil
		}
		return m.beginDrag(msg.X, msg.Y)
	case tea.MouseActionMotion:
		if m.drag != nil {
			m.drag.Move(float64(msg.X))
		}
	case tea.MouseActionRelease:
		if m.drag != nil {
			m.endDrag()
		}
	}
	return nil
}

func (m *Model) beginDrag(x, y int) tea.Cmd {
	row := y - headerRows
	if row < 0 || row >= len(m.doc.Streams) || x < labelWidth {
		return nil
	}
	m.selected = row

	proj := m.project(m.doc)
	col := x - labelWidth + m.scroll
	view := proj.Streams[row]
	for _, bar := range view.Bars {
		first, last := barColumns(bar)
		if col < first || col > last {
			continue
		}
		m.target = dragTarget{stream: row, index: bar.Index, repeating: view.Kind == plan.KindRepeating}
		m.drag = timeline.BeginDrag(float64(x), bar.Start, proj.TrackWidth, proj.TotalDuration)
		m.status = ""
		return frameTickCmd()
	}
	return nil
}

func (m *Model) endDrag() {
	pos := m.drag.End()
	moved := pos != m.drag.OriginalStart()
	m.drag = nil
	if !moved {
		return
	}
	m.apply(m.moveEdit(pos))
}

func (m *Model) moveEdit(pos float64) plan.Edit {
	s := m.doc.Streams[m.target.stream]
	op := plan.OpMoveInterval
	if m.target.repeating {
		op = plan.OpMoveRepeating
	}
	return plan.Edit{Op: op, StreamID: s.ID, Index: m.target.index, Value: pos}
}

func (m *Model) apply(e plan.Edit) {
	next, err := plan.ApplyEdit(m.doc, e)
	if err != nil {
		m.logger.Warn("Rejected edit", "op", string(e.Op), "error", err)
		m.err = err
		return
	}
	m.doc = next
	m.dirty = true
	m.err = nil
	m.status = ""
}

func (m *Model) saveCmd() tea.Cmd {
	if m.store == nil {
		m.status = "no store configured"
		return nil
	}
	doc, id, s := m.doc.Clone(), m.planID, m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return savedMsg{err: s.Save(ctx, id, doc)}
	}
}

func (m *Model) selectedStream() (plan.Stream, bool) {
	if m.selected < 0 || m.selected >= len(m.doc.Streams) {
		return plan.Stream{}, false
	}
	return m.doc.Streams[m.selected], true
}

func (m *Model) setZoom(z int) {
	z = clampZoom(z)
	if z == m.zoom {
		return
	}
	// keep the left edge on the same instant
	before := m.trackWidth()
	m.zoom = z
	if before > 0 {
		m.scroll = int(math.Round(float64(m.scroll) * m.trackWidth() / before))
	}
	m.clampScroll()
}

func (m *Model) trackWidth() float64 {
	return timeline.LevelAt(m.zoom).TrackWidth(float64(m.baseWidth))
}

func (m *Model) viewportWidth() int {
	return max(10, m.width-labelWidth)
}

func (m *Model) clampScroll() {
	maxScroll := max(0, int(math.Ceil(m.trackWidth()))-m.viewportWidth())
	m.scroll = min(max(m.scroll, 0), maxScroll)
}

// project lays doc out at the current zoom; the live drag candidate is shown in place.
func (m *Model) project(doc plan.Document) plan.Projection {
	if m.drag != nil {
		if preview, err := plan.ApplyEdit(doc, m.moveEdit(m.drag.Position())); err == nil {
			doc = preview
		}
	}
	return plan.Project(doc, m.zoom, float64(m.baseWidth))
}

func clampZoom(z int) int {
	return min(max(z, 0), len(timeline.ZoomLevels)-1)
}

// barColumns returns the first and last track columns a bar covers.
func barColumns(bar plan.Bar) (int, int) {
	first := int(math.Floor(bar.X))
	last := int(math.Ceil(bar.X+bar.CastWidth+bar.ActiveWidth)) - 1
	if last < first {
		last = first
	}
	return first, last
}
