package state

import (
	"slices"

	"LiveBoard/internal/geom"
)

// DefaultEraseRadius is how close, in world units, the eraser must come to
// a stroke to pick it.
const DefaultEraseRadius = 5.0

// Store is the local collection of strokes. It is not safe for concurrent
// use: the board drives it from a single goroutine.
//
// At most one element is in progress at a time and it is always the last
// one. Elements marked during an erase gesture are tracked by ID so that
// remote merges arriving mid-gesture cannot shift the marks onto other
// strokes.
type Store struct {
	elements []Element
	ids      map[string]struct{}
	drawing  bool
	pending  map[string]struct{}
	radius   float64
	bounds   *boundsCache
}

// NewStore returns an empty store using radius for erase hit testing.
func NewStore(radius float64) *Store {
	if radius <= 0 {
		radius = DefaultEraseRadius
	}
	return &Store{
		ids:     make(map[string]struct{}),
		pending: make(map[string]struct{}),
		radius:  radius,
		bounds:  newBoundsCache(radius),
	}
}

// Len returns the number of elements, including one in progress.
func (s *Store) Len() int { return len(s.elements) }

// Has reports whether an element with this ID is stored.
func (s *Store) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Drawing reports whether an element is in progress.
func (s *Store) Drawing() bool { return s.drawing }

// Elements returns a deep copy of every element in store order.
func (s *Store) Elements() []Element {
	out := make([]Element, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.Clone()
	}
	return out
}

// Snapshot is Elements with the erase-pending overlay applied: strokes
// marked in the current gesture come back at half opacity. The stored
// elements are never touched.
func (s *Store) Snapshot() []Element {
	out := s.Elements()
	for i := range out {
		if _, ok := s.pending[out[i].ID]; ok {
			out[i].Opacity /= 2
		}
	}
	return out
}

// InProgress returns a copy of the element being drawn, if any.
func (s *Store) InProgress() (Element, bool) {
	if !s.drawing {
		return Element{}, false
	}
	return s.elements[len(s.elements)-1].Clone(), true
}

// BeginElement starts a new empty stroke and returns its ID. A stroke
// already in progress is finished first.
func (s *Store) BeginElement(style Style) string {
	if s.drawing {
		s.FinalizeElement()
	}
	e := Element{
		ID:          NewID(),
		StrokeWidth: style.StrokeWidth,
		Color:       style.Color,
		Opacity:     1,
	}
	s.elements = append(s.elements, e)
	s.ids[e.ID] = struct{}{}
	s.drawing = true
	return e.ID
}

// AppendPoint extends the stroke in progress. It reports false when there
// is none.
func (s *Store) AppendPoint(p geom.Point) bool {
	if !s.drawing {
		return false
	}
	last := &s.elements[len(s.elements)-1]
	last.Points = append(last.Points, p)
	return true
}

// FinalizeElement ends the stroke in progress. A stroke with no points is
// discarded and false is returned; otherwise a copy ready to send is.
func (s *Store) FinalizeElement() (Element, bool) {
	if !s.drawing {
		return Element{}, false
	}
	s.drawing = false
	n := len(s.elements) - 1
	last := s.elements[n]
	if len(last.Points) == 0 {
		s.elements = s.elements[:n]
		delete(s.ids, last.ID)
		return Element{}, false
	}
	return last.Clone(), true
}

// hitTest returns the index of the first finished element near p, or -1.
func (s *Store) hitTest(p geom.Point) int {
	for i, e := range s.elements {
		if s.drawing && i == len(s.elements)-1 {
			break
		}
		if !s.bounds.get(e).Contains(p) {
			continue
		}
		for j := 0; j < len(e.Points)-1; j++ {
			if geom.NearSegment(e.Points[j], e.Points[j+1], p, s.radius) {
				return i
			}
		}
	}
	return -1
}

// EraseAt marks the first element near p for removal at the end of the
// gesture. It returns a pre-erasure copy of a newly marked element; an
// element already marked in this gesture is not returned again.
func (s *Store) EraseAt(p geom.Point) (Element, bool) {
	i := s.hitTest(p)
	if i < 0 {
		return Element{}, false
	}
	e := s.elements[i]
	if _, ok := s.pending[e.ID]; ok {
		return Element{}, false
	}
	s.pending[e.ID] = struct{}{}
	return e.Clone(), true
}

// PendingErase returns how many elements are marked.
func (s *Store) PendingErase() int { return len(s.pending) }

// CommitErase removes every marked element and clears the marks. It
// returns the number removed.
func (s *Store) CommitErase() int {
	if len(s.pending) == 0 {
		return 0
	}
	before := len(s.elements)
	s.elements = slices.DeleteFunc(s.elements, func(e Element) bool {
		_, ok := s.pending[e.ID]
		if ok {
			s.forget(e.ID)
		}
		return ok
	})
	s.pending = make(map[string]struct{})
	return before - len(s.elements)
}

// MergeRemoteAdditions adds elements received from peers or an import.
// They go in front of a stroke in progress so it stays last. An element
// without an ID gets its ContentID. Elements whose ID is already present
// are skipped. It returns the number added.
func (s *Store) MergeRemoteAdditions(elements []Element) int {
	incoming := make([]Element, 0, len(elements))
	for _, e := range elements {
		c := e.Clone()
		if c.ID == "" {
			c.ID = ContentID(c)
		}
		if _, ok := s.ids[c.ID]; ok {
			continue
		}
		c.Opacity = geom.Clamp(c.Opacity, 0, 1)
		s.ids[c.ID] = struct{}{}
		incoming = append(incoming, c)
	}
	if len(incoming) == 0 {
		return 0
	}
	at := len(s.elements)
	if s.drawing {
		at--
	}
	s.elements = slices.Insert(s.elements, at, incoming...)
	return len(incoming)
}

// MergeRemoteErasures removes local elements matching any of the erased
// elements (see SameStroke). A stroke still in progress is never matched:
// no peer can have seen it. It returns the number removed.
func (s *Store) MergeRemoteErasures(erased []Element) int {
	if len(erased) == 0 || len(s.elements) == 0 {
		return 0
	}
	var current string
	if s.drawing {
		current = s.elements[len(s.elements)-1].ID
	}
	before := len(s.elements)
	s.elements = slices.DeleteFunc(s.elements, func(e Element) bool {
		if s.drawing && e.ID == current {
			return false
		}
		for _, x := range erased {
			if SameStroke(e, x) {
				s.forget(e.ID)
				delete(s.pending, e.ID)
				return true
			}
		}
		return false
	})
	return before - len(s.elements)
}

// Reset drops every element and mark.
func (s *Store) Reset() {
	s.elements = nil
	s.drawing = false
	s.ids = make(map[string]struct{})
	s.pending = make(map[string]struct{})
	s.bounds.reset()
}

func (s *Store) forget(id string) {
	delete(s.ids, id)
	s.bounds.forget(id)
}
