package hcl

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

func TestParseDocument(t *testing.T) {
	src, err := os.ReadFile("testdata/raid.hcl")
	require.NoError(t, err)

	doc, err := ParseDocument(src)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Raid night", doc.ChartTitle)
	assert.Equal(t, 300.0, doc.TotalDuration)
	require.Len(t, doc.Streams, 2)

	opener := doc.Streams[0]
	assert.Equal(t, "Opener", opener.Name)
	assert.NotEmpty(t, opener.ID)
	assert.Equal(t, plan.KindOneShot, opener.Kind)
	assert.True(t, opener.CheckOverlap, "check_overlap defaults to true")
	assert.Equal(t, "#e06c75", opener.Color)
	require.Len(t, opener.Intervals, 2)
	assert.Equal(t, timeline.EffectInterval{Start: 5, CastDelay: 1.5, Duration: 20}, opener.Intervals[0])
	assert.Equal(t, timeline.EffectInterval{Start: 150, Duration: 20}, opener.Intervals[1])
	assert.Equal(t, timeline.RepeatingEventSpec{Start: 2, Gap: 120, Duration: plan.DefaultDuration}, opener.Repeating)

	pulse := doc.Streams[1]
	assert.Equal(t, plan.KindRepeating, pulse.Kind)
	assert.False(t, pulse.CheckOverlap)
	assert.Empty(t, pulse.Intervals)
	assert.Equal(t, 30.0, pulse.Repeating.Gap)
}

func TestParseDocumentDefaults(t *testing.T) {
	doc, err := ParseDocument([]byte(`stream "Solo" {}`))
	require.NoError(t, err)
	assert.Equal(t, plan.DefaultTotalDuration, doc.TotalDuration)
	assert.Equal(t, "", doc.ChartTitle)
	require.Len(t, doc.Streams, 1)
	assert.Equal(t, timeline.RepeatingEventSpec{Start: timeline.MinElapsed, Gap: plan.DefaultGap, Duration: plan.DefaultDuration}, doc.Streams[0].Repeating)
}

func TestParseDocumentClampsIntervals(t *testing.T) {
	doc, err := ParseDocument([]byte(`
stream "Early" {
  interval {
    start      = -10
    cast_delay = -2
    duration   = -5
  }
}
`))
	require.NoError(t, err)
	require.Len(t, doc.Streams, 1)
	assert.Equal(t, []timeline.EffectInterval{{Start: timeline.MinElapsed, CastDelay: 0, Duration: 0}}, doc.Streams[0].Intervals)
}

func TestParseDocumentRemainingUsesDeclaredTotal(t *testing.T) {
	src := `
total_duration = 120

stream "Late" {
  interval {
    start = remaining("0:30")
  }
  interval {
    start = remaining(500)
  }
}
`
	doc, err := ParseDocument([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Streams[0].Intervals, 2)
	assert.Equal(t, 90.0, doc.Streams[0].Intervals[0].Start)
	assert.Equal(t, timeline.MinElapsed, doc.Streams[0].Intervals[1].Start)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `stream "x" {`},
		{"unknown attribute", `colour = "red"`},
		{"bad clock", `total_duration = clock("1:75")`},
		{"bad kind", `stream "x" { kind = "sometimes" }`},
		{"zero total", `total_duration = 0`},
		{"missing start", "stream \"x\" {\n  interval {\n    duration = 3\n  }\n}\n"},
		{"duplicate id", "stream \"a\" { id = \"s\" }\nstream \"b\" { id = \"s\" }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestFormatDocumentRoundTrip(t *testing.T) {
	doc := plan.Default()
	doc.Streams[1].Unique = true
	doc.Streams[0].Repeating.CastDelay = 0.5

	out := FormatDocument(doc)
	assert.Contains(t, string(out), `stream "Opener"`)

	parsed, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, doc, *parsed)
}

func TestIsHCL(t *testing.T) {
	assert.True(t, IsHCL([]byte(`title = "x"`)))
	assert.False(t, IsHCL([]byte("Opener, 5, 1.5, 20")))
}
