// Package export writes the board to JSON, PDF and PNG and reads it back
// from JSON.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"LiveBoard/internal/geom"
	"LiveBoard/internal/state"
)

// ErrNotArray is returned by ReadJSON when the document is not a JSON
// array of elements.
var ErrNotArray = errors.New("board document is not an array")

// WriteJSON writes elements as an indented JSON array.
func WriteJSON(w io.Writer, elements []state.Element) error {
	if elements == nil {
		elements = []state.Element{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(elements); err != nil {
		return fmt.Errorf("write board json: %w", err)
	}
	return nil
}

// ReadJSON parses a document written by WriteJSON. Elements without points
// are skipped. On error nothing is returned.
func ReadJSON(r io.Reader) ([]state.Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read board json: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return nil, ErrNotArray
	}
	var elements []state.Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("parse board json: %w", err)
	}
	return slices.DeleteFunc(elements, func(e state.Element) bool {
		return len(e.Points) == 0
	}), nil
}

// Bounds is the area covered by elements, strokes' widths included.
func Bounds(elements []state.Element) geom.Rect {
	var r geom.Rect
	for _, e := range elements {
		r = r.Union(geom.RectAround(e.Points).Expand(e.StrokeWidth / 2))
	}
	return r
}
