package mapper

import (
	"math"

	"github.com/pkg/errors"
)

// Scale is an ordered, finite set of notes from low to high.
type Scale []Note

// NewScale parses names into a scale. Order is kept as given.
func NewScale(names []string) (Scale, error) {
	if len(names) == 0 {
		return nil, errors.New("scale has no notes")
	}

	sc := make(Scale, len(names))
	for i, name := range names {
		n, err := ParseNote(name)
		if err != nil {
			return nil, err
		}
		sc[i] = n
	}

	return sc, nil
}

// Index maps a vertical position to a scale index. Up is higher pitch, so
// y = 0 picks the last entry and y = 1 the first.
func (sc Scale) Index(y float64) int {
	last := len(sc) - 1
	if last <= 0 {
		return 0
	}

	if math.IsNaN(y) {
		y = 0.5
	}

	idx := int(math.Round((1 - y) * float64(last)))

	switch {
	case idx < 0:
		return 0
	case idx > last:
		return last
	}

	return idx
}

// Quantize returns the scale entry for the vertical position y.
func (sc Scale) Quantize(y float64) Note {
	return sc[sc.Index(y)]
}

// Contains reports whether n is a member of the scale.
func (sc Scale) Contains(n Note) bool {
	for _, s := range sc {
		if s.MIDI == n.MIDI {
			return true
		}
	}
	return false
}
