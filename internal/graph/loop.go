package graph

import "github.com/samber/lo"

// LoopInfo describes the chain reached by following next links from a segment.
type LoopInfo struct {
	Start    Handle
	Segments []Handle // visited in travel order, Start first
	Closed   bool     // true when the walk returned to Start
	Length   float64  // metres
}

// Loop walks next links from start until it returns to start, reaches a dead
// end, meets a dangling link, or enters a cycle that does not contain start.
func (g *Graph) Loop(start Handle) (LoopInfo, error) {
	if _, ok := g.Segment(start); !ok {
		return LoopInfo{}, ErrUnknownSegment
	}

	info := LoopInfo{Start: start}
	seen := make(map[Handle]bool, len(g.segments))
	for h := start; ; {
		s, ok := g.Segment(h)
		if !ok || seen[h] {
			break
		}
		seen[h] = true
		info.Segments = append(info.Segments, h)

		if s.Links.Next == start {
			info.Closed = true
			break
		}
		h = s.Links.Next
	}
	info.Length = lo.SumBy(info.Segments, func(h Handle) float64 { return g.segments[h].Length })
	return info, nil
}

// Loops partitions the graph into chains: each closed cycle once, and each
// open chain from its first segment (one with no valid previous link).
func (g *Graph) Loops() []LoopInfo {
	var loops []LoopInfo
	covered := make(map[Handle]bool, len(g.segments))

	walk := func(h Handle) {
		info, err := g.Loop(h)
		if err != nil {
			return
		}
		fresh := lo.Filter(info.Segments, func(s Handle, _ int) bool { return !covered[s] })
		if len(fresh) == 0 {
			return
		}
		for _, s := range info.Segments {
			covered[s] = true
		}
		loops = append(loops, info)
	}

	// chain heads first so open chains are reported from their beginning
	for _, h := range g.Handles() {
		if _, ok := g.Segment(g.segments[h].Links.Previous); !ok {
			walk(h)
		}
	}
	for _, h := range g.Handles() {
		if !covered[h] {
			walk(h)
		}
	}
	return loops
}

// lap holds the length of the closed cycle through a segment in each
// direction of travel, or 0 where the walk does not come back.
type lap struct {
	forward  float64
	backward float64
}

func (g *Graph) lapLength(start Handle, forward bool) float64 {
	total := 0.0
	h := start
	for range g.segments {
		s := &g.segments[h]
		total += s.Length
		link := s.Links.Next
		if !forward {
			link = s.Links.Previous
		}
		if link == start {
			return total
		}
		if _, ok := g.Segment(link); !ok {
			return 0
		}
		h = link
	}
	return 0
}
