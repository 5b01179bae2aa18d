package camera

import (
	"math"

	"LiveBoard/internal/geom"
)

// Pinch tracks a two-finger zoom gesture. It is re-anchored on every
// Start so the zoom is always relative to where the fingers landed.
type Pinch struct {
	active    bool
	startDist float64
	startZoom float64
}

// Start anchors the gesture at the current finger positions and zoom.
func (p *Pinch) Start(t1, t2 geom.Point, zoom float64) {
	p.startDist = geom.SquareDifferenceSum(t1, t2)
	p.startZoom = zoom
	p.active = p.startDist > 0
}

// Active reports whether a pinch is in progress.
func (p *Pinch) Active() bool { return p.active }

// End forgets the gesture.
func (p *Pinch) End() { *p = Pinch{} }

// Zoom returns the unclamped zoom for the current finger positions. The
// squared distances are compared, so the scale factor is the square root
// of their ratio.
func (p *Pinch) Zoom(t1, t2 geom.Point) (float64, bool) {
	if !p.active {
		return 0, false
	}
	cur := geom.SquareDifferenceSum(t1, t2)
	return p.startZoom * math.Sqrt(cur/p.startDist), true
}
