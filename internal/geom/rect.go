package geom

// Rect is an axis-aligned rectangle. The zero Rect is empty.
type Rect struct {
	Min, Max Point
	valid    bool
}

// RectAround returns the bounding box of points.
func RectAround(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Min: points[0], Max: points[0], valid: true}
	for _, p := range points[1:] {
		r = r.Include(p)
	}
	return r
}

// Empty reports whether r covers nothing.
func (r Rect) Empty() bool { return !r.valid }

// Include grows r to contain p.
func (r Rect) Include(p Point) Rect {
	if !r.valid {
		return Rect{Min: p, Max: p, valid: true}
	}
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
	return r
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if !o.valid {
		return r
	}
	return r.Include(o.Min).Include(o.Max)
}

// Expand pads r by d on every side.
func (r Rect) Expand(d float64) Rect {
	if !r.valid {
		return r
	}
	r.Min = r.Min.Sub(Pt(d, d))
	r.Max = r.Max.Add(Pt(d, d))
	return r
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return r.valid &&
		p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }
