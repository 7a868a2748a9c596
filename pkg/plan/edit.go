package plan

import (
	"fmt"
	"math"

	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// EditOp names one field-level change to a Document.
type EditOp string

const (
	OpSetTotal             EditOp = "set_total"
	OpSetTitle             EditOp = "set_title"
	OpAddStream            EditOp = "add_stream"
	OpRemoveStream         EditOp = "remove_stream"
	OpRenameStream         EditOp = "rename_stream"
	OpSetKind              EditOp = "set_kind"
	OpSetCheckOverlap      EditOp = "set_check_overlap"
	OpToggleUnique         EditOp = "toggle_unique"
	OpAddInterval          EditOp = "add_interval"
	OpRemoveInterval       EditOp = "remove_interval"
	OpSetIntervalRemaining EditOp = "set_interval_remaining"
	OpSetIntervalCastDelay EditOp = "set_interval_cast_delay"
	OpSetIntervalDuration  EditOp = "set_interval_duration"
	OpMoveInterval         EditOp = "move_interval"
	OpSetRepeating         EditOp = "set_repeating"
	OpMoveRepeating        EditOp = "move_repeating"
)

var knownOps = map[EditOp]struct{}{
	OpSetTotal: {}, OpSetTitle: {}, OpAddStream: {}, OpRemoveStream: {}, OpRenameStream: {},
	OpSetKind: {}, OpSetCheckOverlap: {}, OpToggleUnique: {}, OpAddInterval: {},
	OpRemoveInterval: {}, OpSetIntervalRemaining: {}, OpSetIntervalCastDelay: {},
	OpSetIntervalDuration: {}, OpMoveInterval: {}, OpSetRepeating: {}, OpMoveRepeating: {},
}

// Valid reports whether op is a known edit.
func (op EditOp) Valid() bool {
	_, ok := knownOps[op]
	return ok
}

// Edit is a single change. Which fields are read depends on Op.
type Edit struct {
	Op        EditOp                       `json:"op"`
	StreamID  string                       `json:"streamId,omitempty"`
	Index     int                          `json:"index,omitempty"`
	Value     float64                      `json:"value,omitempty"`
	Text      string                       `json:"text,omitempty"`
	Flag      bool                         `json:"flag,omitempty"`
	Interval  *timeline.EffectInterval     `json:"interval,omitempty"`
	Repeating *timeline.RepeatingEventSpec `json:"repeating,omitempty"`
	Stream    *Stream                      `json:"stream,omitempty"`
}

// NeedsStreamID reports whether the edit creates a stream without an id.
func (e Edit) NeedsStreamID() bool {
	return e.Op == OpAddStream && (e.Stream == nil || e.Stream.ID == "")
}

// WithStreamID returns a copy of an add_stream edit carrying the given id.
func (e Edit) WithStreamID(id string) Edit {
	var s Stream
	if e.Stream != nil {
		s = *e.Stream
	} else {
		s = Stream{Name: e.Text, Kind: KindOneShot}
	}
	s.ID = id
	e.Stream = &s
	return e
}

// ApplyEdits applies edits in order and stops at the first error.
func ApplyEdits(doc Document, edits []Edit) (Document, error) {
	for i, e := range edits {
		next, err := ApplyEdit(doc, e)
		if err != nil {
			return doc, fmt.Errorf("edit %d (%s): %w", i, e.Op, err)
		}
		doc = next
	}
	return doc, nil
}

// ApplyEdit returns a new Document with e applied. doc is not modified.
// Numeric input is clamped rather than rejected; only structural problems error.
func ApplyEdit(doc Document, e Edit) (Document, error) {
	if !e.Op.Valid() {
		return doc, fmt.Errorf("%w %q", ErrUnknownEdit, e.Op)
	}
	out := doc.Clone()

	switch e.Op {
	case OpSetTotal:
		out.TotalDuration = math.Max(MinTotalDuration, e.Value)
		return out, nil
	case OpSetTitle:
		out.ChartTitle = e.Text
		return out, nil
	case OpAddStream:
		if e.NeedsStreamID() {
			return doc, ErrMissingStreamID
		}
		s := *e.Stream
		if s.Kind == "" {
			s.Kind = KindOneShot
		}
		if !validKind(s.Kind) {
			return doc, fmt.Errorf("%w %q", ErrInvalidKind, s.Kind)
		}
		if out.StreamIndex(s.ID) >= 0 {
			return doc, fmt.Errorf("%w %q", ErrDuplicateStream, s.ID)
		}
		s.Intervals = append([]timeline.EffectInterval(nil), s.Intervals...)
		out.Streams = append(out.Streams, s)
		return out, nil
	}

	si := out.StreamIndex(e.StreamID)
	if si < 0 {
		return doc, fmt.Errorf("%w %q", ErrUnknownStream, e.StreamID)
	}
	s := &out.Streams[si]

	switch e.Op {
	case OpRemoveStream:
		out.Streams = append(out.Streams[:si], out.Streams[si+1:]...)
	case OpRenameStream:
		s.Name = e.Text
	case OpSetKind:
		k := Kind(e.Text)
		if !validKind(k) {
			return doc, fmt.Errorf("%w %q", ErrInvalidKind, e.Text)
		}
		s.Kind = k
	case OpSetCheckOverlap:
		s.CheckOverlap = e.Flag
	case OpToggleUnique:
		if s.Unique == e.Flag {
			return out, nil
		}
		s.Unique = e.Flag
		for i := range s.Intervals {
			s.Intervals[i].Duration = timeline.ScaleUnique(s.Intervals[i].Duration, e.Flag)
		}
		s.Repeating.Duration = timeline.ScaleUnique(s.Repeating.Duration, e.Flag)
	case OpAddInterval:
		iv := timeline.EffectInterval{Start: timeline.MinElapsed, Duration: DefaultDuration}
		if e.Interval != nil {
			iv = *e.Interval
		}
		s.Intervals = append(s.Intervals, clampInterval(iv))
	case OpSetRepeating:
		if e.Repeating != nil {
			s.Repeating = *e.Repeating
		}
	case OpMoveRepeating:
		s.Repeating.Start = timeline.RepeatingStartFromOccurrence(e.Value, e.Index, s.Repeating.Gap)
	default:
		if err := applyIntervalEdit(out.TotalDuration, s, e); err != nil {
			return doc, err
		}
	}
	return out, nil
}

func applyIntervalEdit(total float64, s *Stream, e Edit) error {
	if e.Index < 0 || e.Index >= len(s.Intervals) {
		return fmt.Errorf("%w: %d of %d", ErrIntervalIndex, e.Index, len(s.Intervals))
	}
	iv := &s.Intervals[e.Index]

	switch e.Op {
	case OpRemoveInterval:
		s.Intervals = append(s.Intervals[:e.Index], s.Intervals[e.Index+1:]...)
	case OpSetIntervalRemaining:
		iv.Start = timeline.FromRemaining(e.Value, total)
	case OpSetIntervalCastDelay:
		iv.CastDelay = math.Max(0, e.Value)
	case OpSetIntervalDuration:
		iv.Duration = math.Max(0, e.Value)
	case OpMoveInterval:
		iv.Start = math.Max(timeline.MinElapsed, e.Value)
	}
	return nil
}

func clampInterval(iv timeline.EffectInterval) timeline.EffectInterval {
	iv.Start = math.Max(timeline.MinElapsed, iv.Start)
	iv.CastDelay = math.Max(0, iv.CastDelay)
	iv.Duration = math.Max(0, iv.Duration)
	return iv
}
