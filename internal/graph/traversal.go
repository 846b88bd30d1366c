package graph

import (
	"fmt"
	"math"
)

// Stop describes how Resolve ended.
type Stop uint8

const (
	// StopNone: the position is back inside a valid segment.
	StopNone Stop = iota
	// StopDeadEnd: the vehicle ran off an unlinked end and must halt.
	StopDeadEnd
	// StopBrokenLink: a link pointed at a missing segment; the position was
	// left at the boundary of the last valid segment.
	StopBrokenLink
)

func (s Stop) String() string {
	switch s {
	case StopNone:
		return "none"
	case StopDeadEnd:
		return "dead_end"
	case StopBrokenLink:
		return "broken_link"
	}
	return fmt.Sprintf("stop(%d)", uint8(s))
}

// Resolve restores 0 <= Distance <= length after an unconstrained distance
// update, crossing as many segment boundaries as needed in either direction.
//
// On a dead end the distance is clamped to that end and StopDeadEnd is
// returned; the caller zeroes the speed. A link to a missing segment, or a
// cycle that makes no progress, clamps to the boundary being crossed and
// returns StopBrokenLink with an error describing the fault. An invalid
// starting segment returns the position unchanged with ErrUnknownSegment.
// Whole laps of a closed cycle are removed arithmetically, so the work per
// call is bounded by the segment count however far the position overshoots.
func (g *Graph) Resolve(pos Position) (Position, Stop, error) {
	seg, ok := g.Segment(pos.Segment)
	if !ok {
		return pos, StopBrokenLink, fmt.Errorf("segment handle %d: %w", pos.Segment, ErrUnknownSegment)
	}

	// whole laps of a closed cycle are dropped first, so a single call never
	// hops across more than about two laps of segments
	if l := g.laps[pos.Segment]; l.forward >= MinSegmentLength && pos.Distance >= l.forward {
		pos.Distance = math.Mod(pos.Distance, l.forward)
	} else if l.backward >= MinSegmentLength && pos.Distance < -l.backward {
		pos.Distance = math.Mod(pos.Distance, l.backward)
	}

	// each zero-length hop is counted; a well-formed loop resets it
	idle := 0

	for pos.Distance >= seg.Length {
		if seg.Links.Next == NoSegment {
			pos.Distance = seg.Length
			return pos, StopDeadEnd, nil
		}
		next, ok := g.Segment(seg.Links.Next)
		if !ok {
			pos.Distance = seg.Length
			return pos, StopBrokenLink, fmt.Errorf("segment %q next: %w", seg.ID, ErrDanglingLink)
		}
		if seg.Length <= 0 {
			if idle++; idle > len(g.segments) {
				pos.Distance = seg.Length
				return pos, StopBrokenLink, fmt.Errorf("segment %q: %w", seg.ID, ErrDegenerateLoop)
			}
		} else {
			idle = 0
		}
		pos.Distance -= seg.Length
		pos.Segment = seg.Links.Next
		seg = next
	}

	for pos.Distance < 0 {
		if seg.Links.Previous == NoSegment {
			pos.Distance = 0
			return pos, StopDeadEnd, nil
		}
		prev, ok := g.Segment(seg.Links.Previous)
		if !ok {
			pos.Distance = 0
			return pos, StopBrokenLink, fmt.Errorf("segment %q previous: %w", seg.ID, ErrDanglingLink)
		}
		if prev.Length <= 0 {
			if idle++; idle > len(g.segments) {
				pos.Distance = 0
				return pos, StopBrokenLink, fmt.Errorf("segment %q: %w", prev.ID, ErrDegenerateLoop)
			}
		} else {
			idle = 0
		}
		pos.Distance += prev.Length
		pos.Segment = seg.Links.Previous
		seg = prev
	}

	return pos, StopNone, nil
}

// Progress returns Distance as a fraction of the segment length clamped to
// [0, 1]. Degenerate segments count as fully travelled.
func (s *Segment) Progress(distance float64) float64 {
	if s.Length < MinSegmentLength {
		return 1
	}
	p := distance / s.Length
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
