package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/geom"
	"LiveBoard/internal/state"
)

func sample() []state.Element {
	return []state.Element{
		{ID: "a", StrokeWidth: 4, Color: "#000000", Opacity: 1,
			Points: []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 25}, {X: 100, Y: 50}}},
		{ID: "b", StrokeWidth: 4, Color: "red", Opacity: 0.5,
			Points: []geom.Point{{X: 100, Y: 0}, {X: 0, Y: 50}}},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {"), "indented array")

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestReadJSONRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"object":    `{"points":[]}`,
		"null":      `null`,
		"garbage":   `[{"points":`,
		"empty":     ``,
		"bad point": `[{"points":[{"x":"one"}]}]`,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ReadJSON(strings.NewReader(doc))
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}

	_, err := ReadJSON(strings.NewReader(`{}`))
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestReadJSONSkipsEmptyStrokes(t *testing.T) {
	got, err := ReadJSON(strings.NewReader(`[{"strokeWidth":2,"points":[]},{"stroke":3,"points":[{"x":1,"y":1}]}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].StrokeWidth)
	assert.Equal(t, 1.0, got[0].Opacity)
}

func TestBounds(t *testing.T) {
	b := Bounds(sample())
	assert.Equal(t, geom.Pt(-2, -2), b.Min)
	assert.Equal(t, geom.Pt(102, 52), b.Max)
	assert.True(t, Bounds(nil).Empty())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sample(), "#fcfcfc"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, WritePDF(&buf, nil, "#fcfcfc"), "empty board is a blank page")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, sample(), "#ffffff", 10))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 124, img.Bounds().Dx())
	assert.Equal(t, 74, img.Bounds().Dy())

	// the corner is margin, so it keeps the background colour
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})

	buf.Reset()
	require.NoError(t, WritePNG(&buf, nil, "#ffffff", 5))
	img, err = png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}
