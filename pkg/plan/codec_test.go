package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	b, err := EncodeJSON(Default())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalDuration":300`)

	doc, err := DecodeJSON(b)
	require.NoError(t, err)
	assert.Equal(t, Default(), doc)

	_, err = DecodeJSON([]byte(`{"totalDuration":`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`{"totalDuration":0,"streams":[]}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDecodeYAMLFillsIDs(t *testing.T) {
	src := `
total_duration: 180
chart_title: Hand written
streams:
  - name: Opener
    intervals:
      - start: 10
        cast_delay: 1
        duration: 20
    check_overlap: true
  - name: Pulse
    kind: repeating
    intervals:
      - start: 2
        duration: 5
    repeating:
      start: 2
      gap: 30
      duration: 5
`
	doc, err := DecodeYAML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 180.0, doc.TotalDuration)
	require.Len(t, doc.Streams, 2)
	assert.NotEmpty(t, doc.Streams[0].ID)
	assert.Equal(t, KindOneShot, doc.Streams[0].Kind)
	assert.Equal(t, 1.0, doc.Streams[0].Intervals[0].CastDelay)
	assert.Equal(t, KindRepeating, doc.Streams[1].Kind)
	assert.Equal(t, 30.0, doc.Streams[1].Repeating.Gap)

	out, err := EncodeYAML(doc)
	require.NoError(t, err)
	again, err := DecodeYAML(out)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestDecodeYAMLInvalid(t *testing.T) {
	_, err := DecodeYAML([]byte("total_duration: [oops"))
	assert.Error(t, err)

	_, err = DecodeYAML([]byte("total_duration: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
