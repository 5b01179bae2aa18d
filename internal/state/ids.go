package state

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// contentSpace namespaces the name-based IDs minted by ContentID.
var contentSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("liveboard://element"))

// NewID returns a fresh element identifier.
func NewID() string {
	return uuid.NewString()
}

// ContentID derives an identifier from a stroke's width, color and points.
// Boards that receive the same ID-less stroke all mint the same ID for it.
func ContentID(e Element) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(e.StrokeWidth, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(e.Color)
	for _, p := range e.Points {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	}
	return uuid.NewSHA1(contentSpace, []byte(b.String())).String()
}
