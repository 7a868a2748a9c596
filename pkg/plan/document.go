// Package plan holds the authoritative timeline document and the operations that edit,
// project, import and export it. Everything derived from a Document is recomputed on
// demand; nothing here caches.
package plan

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// Kind selects which part of a Stream is laid out on the timeline.
type Kind string

const (
	KindOneShot   Kind = "one-shot"
	KindRepeating Kind = "repeating"
)

// Defaults used when creating streams and by plain-text import.
const (
	DefaultTotalDuration = 300.0
	DefaultDuration      = 20.0
	DefaultGap           = 30.0
	MinTotalDuration     = 1.0
)

var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrUnknownStream   = errors.New("unknown stream")
	ErrDuplicateStream = errors.New("duplicate stream id")
	ErrIntervalIndex   = errors.New("interval index out of range")
	ErrInvalidKind     = errors.New("invalid stream kind")
	ErrMissingStreamID = errors.New("stream id is required")
	ErrUnknownEdit     = errors.New("unknown edit op")
)

// Stream is one row of the timeline: a set of one-shot intervals and a repeating spec.
type Stream struct {
	ID           string                      `json:"id" yaml:"id"`
	Name         string                      `json:"name" yaml:"name"`
	Kind         Kind                        `json:"kind" yaml:"kind"`
	Intervals    []timeline.EffectInterval   `json:"intervals" yaml:"intervals"`
	Repeating    timeline.RepeatingEventSpec `json:"repeating" yaml:"repeating"`
	CheckOverlap bool                        `json:"checkOverlap" yaml:"check_overlap"`
	Unique       bool                        `json:"unique" yaml:"unique"`
	Color        string                      `json:"color,omitempty" yaml:"color,omitempty"`
}

// Document is the single mutable state of a plan.
type Document struct {
	TotalDuration float64  `json:"totalDuration" yaml:"total_duration"`
	ChartTitle    string   `json:"chartTitle" yaml:"chart_title"`
	Streams       []Stream `json:"streams" yaml:"streams"`
}

// NewStreamID returns a fresh random stream id.
func NewStreamID() string {
	return uuid.New().String()
}

// NewStream creates a stream with one default interval and a default repeating spec.
func NewStream(name string, kind Kind) Stream {
	return Stream{
		ID:   NewStreamID(),
		Name: name,
		Kind: kind,
		Intervals: []timeline.EffectInterval{
			{Start: timeline.MinElapsed, Duration: DefaultDuration},
		},
		Repeating: timeline.RepeatingEventSpec{
			Start:    timeline.MinElapsed,
			Gap:      DefaultGap,
			Duration: DefaultDuration,
		},
	}
}

// defaultID is stable across calls so a default plan always has the same ids.
func defaultID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("countdown-timeline/default/"+name)).String()
}

// Default is the built-in plan used when nothing has been saved yet.
func Default() Document {
	return Document{
		TotalDuration: DefaultTotalDuration,
		ChartTitle:    "Countdown plan",
		Streams: []Stream{
			{
				ID:   defaultID("opener"),
				Name: "Opener",
				Kind: KindOneShot,
				Intervals: []timeline.EffectInterval{
					{Start: 5, CastDelay: 1.5, Duration: 20},
					{Start: 150, CastDelay: 1.5, Duration: 20},
				},
				Repeating:    timeline.RepeatingEventSpec{Start: timeline.MinElapsed, Gap: 120, Duration: 20},
				CheckOverlap: true,
				Color:        "#e06c75",
			},
			{
				ID:   defaultID("barrier"),
				Name: "Barrier",
				Kind: KindOneShot,
				Intervals: []timeline.EffectInterval{
					{Start: 60, Duration: 15},
					{Start: 240, Duration: 15},
				},
				Repeating:    timeline.RepeatingEventSpec{Start: timeline.MinElapsed, Gap: 90, Duration: 15},
				CheckOverlap: true,
				Color:        "#61afef",
			},
			{
				ID:   defaultID("pulse"),
				Name: "Pulse",
				Kind: KindRepeating,
				Intervals: []timeline.EffectInterval{
					{Start: timeline.MinElapsed, Duration: 10},
				},
				Repeating: timeline.RepeatingEventSpec{Start: timeline.MinElapsed, Gap: 30, Duration: 10},
				Color:     "#98c379",
			},
		},
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := d
	out.Streams = make([]Stream, len(d.Streams))
	for i, s := range d.Streams {
		s.Intervals = append([]timeline.EffectInterval(nil), s.Intervals...)
		out.Streams[i] = s
	}
	return out
}

// Validate checks the invariants a loaded document must satisfy.
func (d Document) Validate() error {
	if !(d.TotalDuration > 0) {
		return fmt.Errorf("%w: total duration must be positive, got %v", ErrInvalidDocument, d.TotalDuration)
	}
	seen := make(map[string]struct{}, len(d.Streams))
	for i, s := range d.Streams {
		if s.ID == "" {
			return fmt.Errorf("%w: stream %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %w %q", ErrInvalidDocument, ErrDuplicateStream, s.ID)
		}
		seen[s.ID] = struct{}{}
		if !validKind(s.Kind) {
			return fmt.Errorf("%w: stream %q: %w %q", ErrInvalidDocument, s.ID, ErrInvalidKind, s.Kind)
		}
	}
	return nil
}

// StreamIndex returns the position of the stream with the given id, or -1.
func (d Document) StreamIndex(id string) int {
	for i, s := range d.Streams {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// OverlapIntervals collects the one-shot intervals that take part in overlap checking.
// Repeating occurrences never do.
func (d Document) OverlapIntervals() []timeline.EffectInterval {
	var out []timeline.EffectInterval
	for _, s := range d.Streams {
		if s.Kind != KindOneShot || !s.CheckOverlap {
			continue
		}
		out = append(out, s.Intervals...)
	}
	return out
}

func validKind(k Kind) bool {
	return k == KindOneShot || k == KindRepeating
}
