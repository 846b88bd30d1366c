// Package graph holds the static track network: an arena of Bézier segments
// addressed by integer handles, each optionally linked to a previous and a
// next neighbour.
//
// The graph is built once from GraphData and is read-only afterwards, so any
// number of vehicles may traverse it concurrently without locking.
package graph

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/cxd309/coaster-engine/internal/curve"
)

// SegmentID is the scene-facing name of a segment.
type SegmentID = string

// Handle addresses a segment inside a Graph.
type Handle int32

const (
	// NoSegment marks an absent link: a dead end.
	NoSegment Handle = -1
	// Unresolved marks a link whose target name is not in the graph.
	Unresolved Handle = -2
)

var (
	// ErrUnknownSegment is returned for a segment ID or handle not in the graph.
	ErrUnknownSegment = errors.New("unknown segment")
	// ErrDanglingLink marks a previous or next link naming a missing segment.
	ErrDanglingLink = errors.New("dangling link")
	// ErrDegenerateLoop is returned when traversal keeps hopping across
	// zero-length segments without covering any distance.
	ErrDegenerateLoop = errors.New("loop of zero-length segments")
)

// SegmentData is the serialisable input form of one track piece.
type SegmentData struct {
	ID            SegmentID     `json:"segment_id"`
	ControlPoints [4]mgl64.Vec3 `json:"control_points"` // start anchor, start control, end control, end anchor
	Previous      SegmentID     `json:"previous,omitempty"`
	Next          SegmentID     `json:"next,omitempty"`
}

// GraphData is the serialisable input representation of a track network.
type GraphData struct {
	// Resolution is the number of chords per arc-length table; 0 selects
	// curve.DefaultResolution.
	Resolution int           `json:"resolution,omitempty"`
	Segments   []SegmentData `json:"segments"`
}

// Links are the graph edges attached to a segment.
type Links struct {
	Previous Handle
	Next     Handle
}

// Segment is one immutable track piece with its precomputed arc-length table.
type Segment struct {
	ID     SegmentID
	Curve  curve.Bezier
	Table  curve.ArcLengthTable
	Length float64 // metres
	Links  Links
}

// Position is a point along a segment, Distance metres from its start anchor.
type Position struct {
	Segment  Handle  `json:"segment"`
	Distance float64 `json:"distance"` // metres
}

// Graph is the arena of segments.
type Graph struct {
	segments []Segment
	byID     map[SegmentID]Handle
	// linkNames keeps the original names so dangling links can be reported.
	linkNames []SegmentData
	laps      []lap
}

// NewGraph builds a Graph from GraphData. Duplicate or empty segment IDs are
// errors. Links naming unknown segments are kept as Unresolved so that a
// malformed scene degrades individual vehicles instead of failing outright;
// Validate reports them.
func NewGraph(data GraphData) (*Graph, error) {
	g := &Graph{
		segments:  make([]Segment, 0, len(data.Segments)),
		byID:      make(map[SegmentID]Handle, len(data.Segments)),
		linkNames: data.Segments,
	}
	for _, sd := range data.Segments {
		if sd.ID == "" {
			return nil, fmt.Errorf("segment #%d has no id", len(g.segments))
		}
		if _, exists := g.byID[sd.ID]; exists {
			return nil, fmt.Errorf("segment %q already exists", sd.ID)
		}
		b := curve.NewBezier(sd.ControlPoints[0], sd.ControlPoints[1], sd.ControlPoints[2], sd.ControlPoints[3])
		table := curve.BuildTable(b, data.Resolution)
		g.byID[sd.ID] = Handle(len(g.segments))
		g.segments = append(g.segments, Segment{
			ID:     sd.ID,
			Curve:  b,
			Table:  table,
			Length: table.Length(),
		})
	}
	for i, sd := range data.Segments {
		g.segments[i].Links = Links{
			Previous: g.resolveLink(sd.Previous),
			Next:     g.resolveLink(sd.Next),
		}
	}
	g.laps = make([]lap, len(g.segments))
	for i := range g.segments {
		g.laps[i] = lap{
			forward:  g.lapLength(Handle(i), true),
			backward: g.lapLength(Handle(i), false),
		}
	}
	return g, nil
}

func (g *Graph) resolveLink(name SegmentID) Handle {
	if name == "" {
		return NoSegment
	}
	h, ok := g.byID[name]
	if !ok {
		return Unresolved
	}
	return h
}

// Len returns the number of segments.
func (g *Graph) Len() int { return len(g.segments) }

// Segment returns the segment behind h. The boolean is false for NoSegment,
// Unresolved and any handle outside the arena.
func (g *Graph) Segment(h Handle) (*Segment, bool) {
	if h < 0 || int(h) >= len(g.segments) {
		return nil, false
	}
	return &g.segments[h], true
}

// Lookup resolves a segment name to its handle.
func (g *Graph) Lookup(id SegmentID) (Handle, error) {
	h, ok := g.byID[id]
	if !ok {
		return NoSegment, fmt.Errorf("segment %q: %w", id, ErrUnknownSegment)
	}
	return h, nil
}

// Name returns the scene name of h, or a placeholder for invalid handles.
func (g *Graph) Name(h Handle) SegmentID {
	if s, ok := g.Segment(h); ok {
		return s.ID
	}
	return fmt.Sprintf("<invalid:%d>", h)
}

// Handles returns every segment handle in build order.
func (g *Graph) Handles() []Handle {
	return lo.Times(len(g.segments), func(i int) Handle { return Handle(i) })
}

// TotalLength returns the summed length of every segment in metres.
func (g *Graph) TotalLength() float64 {
	return lo.SumBy(g.segments, func(s Segment) float64 { return s.Length })
}
