package curve

import (
	"cmp"
	"slices"
)

// DefaultResolution is the number of chords sampled per segment.
const DefaultResolution = 100

// minSpan is the smallest bracket width that is interpolated across.
const minSpan = 1e-12

// Sample is one entry of an arc-length table.
type Sample struct {
	Distance float64 `json:"distance"` // metres from the start anchor
	T        float64 `json:"t"`
}

// ArcLengthTable maps cumulative chord distance to curve parameter. Entries are
// non-decreasing in both Distance and T, starting at (0, 0) and ending at
// (Length, 1).
type ArcLengthTable []Sample

// BuildTable samples b at resolution+1 uniformly spaced parameters and sums
// the chord lengths between consecutive positions. A resolution below 1 falls
// back to DefaultResolution.
func BuildTable(b Bezier, resolution int) ArcLengthTable {
	if resolution < 1 {
		resolution = DefaultResolution
	}

	table := make(ArcLengthTable, 0, resolution+1)
	table = append(table, Sample{Distance: 0, T: 0})

	prev := b.Position(0)
	total := 0.0
	for i := 1; i <= resolution; i++ {
		t := float64(i) / float64(resolution)
		p := b.Position(t)
		total += p.Sub(prev).Len()
		table = append(table, Sample{Distance: total, T: t})
		prev = p
	}
	return table
}

// Length returns the final cumulative distance, or 0 for an empty table.
func (a ArcLengthTable) Length() float64 {
	if len(a) == 0 {
		return 0
	}
	return a[len(a)-1].Distance
}

// ParameterForDistance returns the curve parameter reached after travelling
// distance metres from the start anchor. Distances before the table clamp to
// 0, distances past it clamp to 1, and an empty table always yields 0.
func (a ArcLengthTable) ParameterForDistance(distance float64) float64 {
	if len(a) == 0 {
		return 0
	}

	i, found := slices.BinarySearchFunc(a, distance, func(s Sample, d float64) int {
		return cmp.Compare(s.Distance, d)
	})
	switch {
	case found:
		return a[i].T
	case i == 0:
		return 0
	case i >= len(a):
		return 1
	}

	lo, hi := a[i-1], a[i]
	span := hi.Distance - lo.Distance
	if span < minSpan {
		return lo.T
	}
	return lo.T + (distance-lo.Distance)/span*(hi.T-lo.T)
}

// DistanceForParameter is the inverse lookup: the arc length from the start
// anchor to parameter t, interpolated between samples.
func (a ArcLengthTable) DistanceForParameter(t float64) float64 {
	if len(a) == 0 {
		return 0
	}

	i, found := slices.BinarySearchFunc(a, t, func(s Sample, v float64) int {
		return cmp.Compare(s.T, v)
	})
	switch {
	case found:
		return a[i].Distance
	case i == 0:
		return 0
	case i >= len(a):
		return a.Length()
	}

	lo, hi := a[i-1], a[i]
	span := hi.T - lo.T
	if span < minSpan {
		return lo.Distance
	}
	return lo.Distance + (t-lo.T)/span*(hi.Distance-lo.Distance)
}
