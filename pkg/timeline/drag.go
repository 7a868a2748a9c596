package timeline

import (
	"math"
	"sync"
)

// PixelsToSeconds maps a pointer displacement onto the timeline. trackPixelWidth must be
// the rendered width of the whole track at the current zoom, not the viewport width.
func PixelsToSeconds(pixelDelta, trackPixelWidth, total float64) float64 {
	if trackPixelWidth <= 0 {
		return 0
	}
	return pixelDelta / trackPixelWidth * total
}

// DraggedStart applies a drag to a start value. Only a floor is applied: dragging past the
// end of the window is allowed and shows up as an overflowing interval.
func DraggedStart(originalStart, pixelDelta, trackPixelWidth, total float64) float64 {
	return math.Max(MinElapsed, originalStart+PixelsToSeconds(pixelDelta, trackPixelWidth, total))
}

// RepeatingStartFromOccurrence returns the canonical stream start implied by placing
// occurrence index at occurrenceStart. Only the canonical start is ever stored.
func RepeatingStartFromOccurrence(occurrenceStart float64, index int, gap float64) float64 {
	return math.Max(MinElapsed, occurrenceStart-float64(index)*math.Max(gap, GapFloor))
}

// Mailbox is a single-slot, keep-latest mailbox. Put replaces any pending value.
type Mailbox[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
}

// Put stores v, discarding a pending value that was not yet taken.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.pending = true
	m.mu.Unlock()
}

// Take returns the pending value and empties the slot.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.value, m.pending
	var zero T
	m.value = zero
	m.pending = false
	return v, ok
}

// Pending reports whether a value is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// DragSession is the transient context of one drag gesture.
//
// Pointer moves are posted to a mailbox and only the latest one is applied, once per
// Frame. The remaining-time label stays frozen at its pre-drag value until End.
type DragSession struct {
	originPx      float64
	originalStart float64
	trackWidth    float64
	total         float64
	label         string

	candidate float64
	moves     Mailbox[float64]
	done      bool
}

// BeginDrag captures the pointer origin and the interval's pre-drag start.
func BeginDrag(originPx, originalStart, trackPixelWidth, total float64) *DragSession {
	return &DragSession{
		originPx:      originPx,
		originalStart: originalStart,
		trackWidth:    trackPixelWidth,
		total:         total,
		label:         FormatClock(ToRemaining(originalStart, total)),
		candidate:     originalStart,
	}
}

// Move records the current pointer position. It does no computation.
func (d *DragSession) Move(px float64) {
	if d.done {
		return
	}
	d.moves.Put(px)
}

// Frame applies the latest pending move, if any, and reports whether the candidate changed.
func (d *DragSession) Frame() bool {
	if d.done {
		return false
	}
	px, ok := d.moves.Take()
	if !ok {
		return false
	}
	next := DraggedStart(d.originalStart, px-d.originPx, d.trackWidth, d.total)
	if next == d.candidate {
		return false
	}
	d.candidate = next
	return true
}

// Position is the live candidate start.
func (d *DragSession) Position() float64 {
	return d.candidate
}

// Label is the remaining-time label frozen at BeginDrag.
func (d *DragSession) Label() string {
	return d.label
}

// OriginalStart is the start captured at BeginDrag.
func (d *DragSession) OriginalStart() float64 {
	return d.originalStart
}

// End flushes any pending move and returns the start to commit.
func (d *DragSession) End() float64 {
	if !d.done {
		d.Frame()
		d.done = true
	}
	return d.candidate
}

// Cancel discards the candidate and returns the pre-drag start.
func (d *DragSession) Cancel() float64 {
	d.moves.Take()
	d.candidate = d.originalStart
	d.done = true
	return d.originalStart
}
