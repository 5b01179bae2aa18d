package state

import (
	"LiveBoard/internal/geom"
)

// reachBounds is the box outside which no point can be near e under the
// erase test: the stroke's bounding box padded by the widest reach of any
// of its segments.
func reachBounds(e Element, radius float64) geom.Rect {
	if len(e.Points) < 2 {
		return geom.Rect{}
	}
	var pad float64
	for i := 0; i < len(e.Points)-1; i++ {
		seg := geom.Distance(e.Points[i], e.Points[i+1])
		pad = max(pad, geom.SlackReach(seg, radius))
	}
	return geom.RectAround(e.Points).Expand(pad)
}

// boundsCache remembers reachBounds for finished elements by ID.
type boundsCache struct {
	radius float64
	rects  map[string]geom.Rect
}

func newBoundsCache(radius float64) *boundsCache {
	return &boundsCache{radius: radius, rects: make(map[string]geom.Rect)}
}

func (c *boundsCache) get(e Element) geom.Rect {
	if e.ID == "" {
		return reachBounds(e, c.radius)
	}
	if r, ok := c.rects[e.ID]; ok {
		return r
	}
	r := reachBounds(e, c.radius)
	c.rects[e.ID] = r
	return r
}

func (c *boundsCache) forget(id string) {
	delete(c.rects, id)
}

func (c *boundsCache) reset() {
	c.rects = make(map[string]geom.Rect)
}
