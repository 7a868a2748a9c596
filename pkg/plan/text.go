package plan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// ImportText reads one stream per line: name, start, castDelay, duration, gap[, kind].
//
// Lines starting with '#' and blank lines are skipped. Numbers may be seconds or M:SS;
// anything missing or unparsable falls back to a fixed default. The result replaces every
// stream of base and keeps base's total duration and title.
func ImportText(r io.Reader, base Document) (Document, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	out := Document{
		TotalDuration: base.TotalDuration,
		ChartTitle:    base.ChartTitle,
		Streams:       []Stream{},
	}
	if !(out.TotalDuration > 0) {
		out.TotalDuration = DefaultTotalDuration
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return base, fmt.Errorf("failed to read import: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out.Streams = append(out.Streams, streamFromRecord(rec, len(out.Streams)+1))
	}

	return out, nil
}

func streamFromRecord(rec []string, n int) Stream {
	name := strings.TrimSpace(field(rec, 0))
	if name == "" {
		name = fmt.Sprintf("Action %d", n)
	}
	start := math.Max(timeline.MinElapsed, parseNumber(field(rec, 1), timeline.MinElapsed))
	castDelay := math.Max(0, parseNumber(field(rec, 2), 0))
	duration := math.Max(0, parseNumber(field(rec, 3), DefaultDuration))
	gap := math.Max(0, parseNumber(field(rec, 4), DefaultGap))

	kind := KindOneShot
	switch strings.ToLower(strings.TrimSpace(field(rec, 5))) {
	case "repeating", "repeat", "r":
		kind = KindRepeating
	}

	return Stream{
		ID:   NewStreamID(),
		Name: name,
		Kind: kind,
		Intervals: []timeline.EffectInterval{
			{Start: start, CastDelay: castDelay, Duration: duration},
		},
		Repeating: timeline.RepeatingEventSpec{
			Start:     start,
			CastDelay: castDelay,
			Gap:       gap,
			Duration:  duration,
		},
		CheckOverlap: true,
	}
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func parseNumber(s string, def float64) float64 {
	v, err := timeline.ParseClock(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// ExportLine is one callout of the plain-text export.
type ExportLine struct {
	Remaining float64
	Name      string
}

// String renders "<M:SS> <name>".
func (l ExportLine) String() string {
	return timeline.FormatClock(l.Remaining) + " " + l.Name
}

// ExportLines lists every one-shot interval as a callout, ordered by remaining time
// descending. Equal remaining times keep document order.
func ExportLines(doc Document) []ExportLine {
	var lines []ExportLine
	for _, s := range doc.Streams {
		if s.Kind != KindOneShot {
			continue
		}
		for _, iv := range s.Intervals {
			lines = append(lines, ExportLine{
				Remaining: timeline.ToRemaining(iv.Start, doc.TotalDuration),
				Name:      s.Name,
			})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Remaining > lines[j].Remaining
	})
	return lines
}

// ExportText joins ExportLines with newlines.
func ExportText(doc Document) string {
	var b strings.Builder
	for _, l := range ExportLines(doc) {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}
