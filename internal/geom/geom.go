// Package geom holds the small amount of plane geometry the board needs:
// points, rectangles, distances and the erase proximity test.
package geom

import "math"

// Point is a position in world coordinates unless stated otherwise.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Div(k float64) Point { return Point{p.X / k, p.Y / k} }
func (p Point) Mid(q Point) Point   { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) Eq(q Point) bool     { return p.X == q.X && p.Y == q.Y }

// Clamp limits n to [lo, hi]. When lo > hi, lo wins.
func Clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(n, hi))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SquareDifferenceSum returns the squared distance between a and b.
func SquareDifferenceSum(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// NearSegment reports whether p lies close to the segment a-b using the
// triangle inequality slack: the detour a->p->b is less than radius longer
// than a->b. It does not project onto the segment.
func NearSegment(a, b, p Point, radius float64) bool {
	return math.Abs(Distance(a, b)-(Distance(a, p)+Distance(b, p))) < radius
}

// SlackReach is the largest perpendicular distance from a segment of
// length segLen at which NearSegment can still succeed.
func SlackReach(segLen, radius float64) float64 {
	return math.Sqrt(segLen*radius/2 + radius*radius/4)
}
