package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

func TestImportText(t *testing.T) {
	input := `# name, start, castDelay, duration, gap, kind
Opener, 5, 1.5, 20, 120

Barrier, 1:00, , 15
, abc, -4, x, y
Pulse, 2, 0, 10, 30, repeating
`
	base := testDoc()
	doc, err := ImportText(strings.NewReader(input), base)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	assert.Equal(t, base.TotalDuration, doc.TotalDuration)
	assert.Equal(t, base.ChartTitle, doc.ChartTitle)
	require.Len(t, doc.Streams, 4, "existing streams are replaced")

	opener := doc.Streams[0]
	assert.Equal(t, "Opener", opener.Name)
	assert.Equal(t, KindOneShot, opener.Kind)
	assert.True(t, opener.CheckOverlap)
	assert.Equal(t, []timeline.EffectInterval{{Start: 5, CastDelay: 1.5, Duration: 20}}, opener.Intervals)
	assert.Equal(t, 120.0, opener.Repeating.Gap)

	barrier := doc.Streams[1]
	assert.Equal(t, 60.0, barrier.Intervals[0].Start)
	assert.Equal(t, 0.0, barrier.Intervals[0].CastDelay)
	assert.Equal(t, 15.0, barrier.Intervals[0].Duration)
	assert.Equal(t, DefaultGap, barrier.Repeating.Gap)

	unnamed := doc.Streams[2]
	assert.Equal(t, "Action 3", unnamed.Name)
	assert.Equal(t, timeline.EffectInterval{Start: timeline.MinElapsed, CastDelay: 0, Duration: DefaultDuration}, unnamed.Intervals[0])

	assert.Equal(t, KindRepeating, doc.Streams[3].Kind)
}

func TestImportTextClampsNegativeLengths(t *testing.T) {
	doc, err := ImportText(strings.NewReader("Drain, 10, 0, -5, -30, repeating\n"), testDoc())
	require.NoError(t, err)
	require.Len(t, doc.Streams, 1)

	s := doc.Streams[0]
	assert.Equal(t, 0.0, s.Intervals[0].Duration)
	assert.Equal(t, 0.0, s.Repeating.Duration)
	assert.Equal(t, 0.0, s.Repeating.Gap)
}

func TestImportTextDefaultsTotal(t *testing.T) {
	doc, err := ImportText(strings.NewReader("A, 10\n"), Document{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTotalDuration, doc.TotalDuration)
	require.Len(t, doc.Streams, 1)
}

func TestImportTextEmpty(t *testing.T) {
	doc, err := ImportText(strings.NewReader("# only a comment\n"), testDoc())
	require.NoError(t, err)
	assert.Empty(t, doc.Streams)
}

func TestExportLines(t *testing.T) {
	doc := Document{
		TotalDuration: 300,
		Streams: []Stream{
			{ID: "a", Name: "Late", Kind: KindOneShot, Intervals: []timeline.EffectInterval{{Start: 240}}},
			{ID: "b", Name: "Early", Kind: KindOneShot, Intervals: []timeline.EffectInterval{{Start: 5}, {Start: 240}}},
			{ID: "c", Name: "Rep", Kind: KindRepeating, Intervals: []timeline.EffectInterval{{Start: 2}}},
		},
	}

	lines := ExportLines(doc)
	require.Len(t, lines, 3)
	assert.Equal(t, ExportLine{Remaining: 295, Name: "Early"}, lines[0])
	// equal remaining times keep document order
	assert.Equal(t, "Late", lines[1].Name)
	assert.Equal(t, "Early", lines[2].Name)

	assert.Equal(t, "4:55 Early\n1:00 Late\n1:00 Early\n", ExportText(doc))
}
