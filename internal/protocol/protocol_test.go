package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/geom"
	"LiveBoard/internal/state"
)

func TestEncodeDrawData(t *testing.T) {
	frame, err := Encode(Message{Type: DrawData, Elements: []state.Element{{
		ID: "e1", StrokeWidth: 4, Color: "#000000", Opacity: 1,
		Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
	}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"draw-data","data":[{"id":"e1","strokeWidth":4,"color":"#000000","opacity":1,
		"points":[{"x":0,"y":0},{"x":10,"y":10}]}]}`, string(frame))

	msg, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, DrawData, msg.Type)
	require.Len(t, msg.Elements, 1)
	assert.Equal(t, "e1", msg.Elements[0].ID)
}

func TestEncodeEmptyBatchIsArray(t *testing.T) {
	frame, err := Encode(Message{Type: EraseData})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"erase-data","data":[]}`, string(frame))
}

func TestDecodeLegacyElement(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"erase-data","data":[{"stroke":3,"color":"#fff","opacity":1,"points":[{"x":1,"y":2}]}]}`))
	require.NoError(t, err)
	require.Len(t, msg.Elements, 1)
	assert.Equal(t, 3.0, msg.Elements[0].StrokeWidth)
	assert.Empty(t, msg.Elements[0].ID)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]struct {
		frame string
		want  error
	}{
		"not json":       {`{"type":`, ErrMalformed},
		"object payload": {`{"type":"draw-data","data":{"points":[]}}`, ErrMalformed},
		"null payload":   {`{"type":"draw-data","data":null}`, ErrMalformed},
		"no payload":     {`{"type":"erase-data"}`, ErrMalformed},
		"unknown type":   {`{"type":"chat","data":[]}`, ErrUnknownType},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(tc.frame))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNotices(t *testing.T) {
	frame, err := Encode(Message{Type: Hello, Peer: "p1", Host: "p0"})
	require.NoError(t, err)
	msg, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, "p1", msg.Peer)
	assert.Equal(t, "p0", msg.Host)
	assert.False(t, msg.Type.Relayed())
	assert.True(t, DrawData.Relayed())
}

func TestPeekType(t *testing.T) {
	typ, err := PeekType([]byte(`{"type":"erase-data","data":"anything"}`))
	require.NoError(t, err)
	assert.Equal(t, EraseData, typ)

	_, err = PeekType([]byte(`nope`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Encode(Message{Type: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownType)
}
