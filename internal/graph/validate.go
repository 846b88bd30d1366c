package graph

import (
	"fmt"

	"go.uber.org/multierr"
)

// MinSegmentLength is the length below which a segment is treated as
// degenerate: progress on it counts as already arrived.
const MinSegmentLength = 1e-6

// Validate reports every structural problem in the graph: links to unknown
// segments, links that are not mirrored by the neighbour, and segments too
// short to move along. A nil result means the graph is well formed.
func (g *Graph) Validate() error {
	var err error
	for i := range g.segments {
		s := &g.segments[i]
		h := Handle(i)

		if s.Links.Previous == Unresolved {
			err = multierr.Append(err, fmt.Errorf("segment %q: previous %q: %w",
				s.ID, g.linkNames[i].Previous, ErrDanglingLink))
		}
		if s.Links.Next == Unresolved {
			err = multierr.Append(err, fmt.Errorf("segment %q: next %q: %w",
				s.ID, g.linkNames[i].Next, ErrDanglingLink))
		}
		if next, ok := g.Segment(s.Links.Next); ok && next.Links.Previous != h {
			err = multierr.Append(err, fmt.Errorf("segment %q: next is %q but its previous is %q",
				s.ID, next.ID, g.linkName(next.Links.Previous)))
		}
		if prev, ok := g.Segment(s.Links.Previous); ok && prev.Links.Next != h {
			err = multierr.Append(err, fmt.Errorf("segment %q: previous is %q but its next is %q",
				s.ID, prev.ID, g.linkName(prev.Links.Next)))
		}
		if s.Length < MinSegmentLength {
			err = multierr.Append(err, fmt.Errorf("segment %q: length %g m is degenerate", s.ID, s.Length))
		}
	}
	return err
}

func (g *Graph) linkName(h Handle) string {
	switch h {
	case NoSegment:
		return "<none>"
	case Unresolved:
		return "<unresolved>"
	}
	return g.Name(h)
}
