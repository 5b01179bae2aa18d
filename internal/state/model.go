package state

import (
	"encoding/json"

	"LiveBoard/internal/geom"
)

// Style is what a new stroke is drawn with.
type Style struct {
	StrokeWidth float64
	Color       string
}

// Element is one freehand stroke.
type Element struct {
	ID          string       `json:"id,omitempty"`
	StrokeWidth float64      `json:"strokeWidth"`
	Color       string       `json:"color"`
	Opacity     float64      `json:"opacity"`
	Points      []geom.Point `json:"points"`
}

// Clone returns a copy that shares no memory with e.
func (e Element) Clone() Element {
	c := e
	if e.Points != nil {
		c.Points = make([]geom.Point, len(e.Points))
		copy(c.Points, e.Points)
	}
	return c
}

// UnmarshalJSON accepts the older "stroke" key for the width and treats a
// missing opacity as fully opaque.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	aux := struct {
		*plain
		Stroke  *float64 `json:"stroke"`
		Opacity *float64 `json:"opacity"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.StrokeWidth == 0 && aux.Stroke != nil {
		e.StrokeWidth = *aux.Stroke
	}
	e.Opacity = 1
	if aux.Opacity != nil {
		e.Opacity = geom.Clamp(*aux.Opacity, 0, 1)
	}
	return nil
}

// PrefixMatch reports whether a and b agree point for point up to the
// shorter of the two. Two empty strokes never match.
func PrefixMatch(a, b []geom.Point) bool {
	n := min(len(a), len(b))
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// SameStroke decides whether a remote erasure refers to a local element.
// Identifiers are authoritative when both sides carry one; otherwise the
// point lists are compared.
func SameStroke(local, erased Element) bool {
	if local.ID != "" && erased.ID != "" {
		return local.ID == erased.ID
	}
	return PrefixMatch(local.Points, erased.Points)
}
