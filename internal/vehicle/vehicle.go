// Package vehicle defines the static vehicle description, its placement on the
// track, and the live per-vehicle state mutated by the physics pipeline.
package vehicle

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/kinematics"
)

// VehicleID is a unique string identifier for a vehicle.
type VehicleID = string

// Outcome describes which path the pipeline took for a vehicle on the last tick.
type Outcome string

const (
	// OutcomeNormal: all three stages ran.
	OutcomeNormal Outcome = "normal"
	// OutcomeDeadEnd: the vehicle ran off an unlinked end and was stopped there.
	OutcomeDeadEnd Outcome = "dead_end"
	// OutcomeBrokenLink: the move crossed into a missing segment, so the tick
	// was abandoned and the previous state kept.
	OutcomeBrokenLink Outcome = "broken_link"
	// OutcomeDanglingSegment: the current segment no longer resolves and the
	// pipeline was skipped.
	OutcomeDanglingSegment Outcome = "dangling_segment"
)

// Vehicle holds the static parameters of a vehicle type.
// Friction is encapsulated by the Resistance field; adding a new model only
// requires implementing kinematics.ResistanceModel.
type Vehicle struct {
	Name       string                     `json:"name"`
	Resistance kinematics.ResistanceModel `json:"-"` // set by UnmarshalJSON
}

// vehicleJSON is the raw JSON shape of a Vehicle, before the resistance model is resolved.
type vehicleJSON struct {
	Name       string          `json:"name"`
	Resistance json.RawMessage `json:"resistance,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for Vehicle. A missing
// "resistance" object selects the default rolling-drag coefficients.
func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var aux vehicleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.Name = aux.Name

	m, err := kinematics.Decode(aux.Resistance)
	if err != nil {
		return fmt.Errorf("vehicle %q: %w", v.Name, err)
	}
	v.Resistance = m
	return nil
}

// MarshalJSON implements json.Marshaler for Vehicle.
func (v Vehicle) MarshalJSON() ([]byte, error) {
	raw, err := kinematics.Encode(v.Resistance)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", v.Name, err)
	}
	return json.Marshal(vehicleJSON{Name: v.Name, Resistance: raw})
}

// Placement is the scene-setup definition of one vehicle on the track.
type Placement struct {
	VehicleID       VehicleID       `json:"vehicle_id"`
	InitialSegment  graph.SegmentID `json:"initial_segment"`
	InitialDistance float64         `json:"initial_distance,omitempty"` // metres from the segment start
	InitialSpeed    float64         `json:"initial_speed,omitempty"`    // m/s, positive toward "next"
	Vehicle         Vehicle         `json:"vehicle"`
}

// Pose is the world-space output handed to rendering each tick.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Facing   mgl64.Vec3 `json:"facing"` // unit vector, or zero before any valid tangent
}

// SimVehicle is a Placement enriched with live simulation state. It owns its
// scalars and holds only a handle into the shared graph.
type SimVehicle struct {
	Placement
	Position graph.Position
	Speed    float64 // m/s
	Pose     Pose
	Outcome  Outcome
}

// NewSimVehicle places p on g. The initial segment must exist and the initial
// distance must lie within it.
func NewSimVehicle(p Placement, g *graph.Graph) (*SimVehicle, error) {
	if p.VehicleID == "" {
		return nil, fmt.Errorf("vehicle has no id")
	}
	h, err := g.Lookup(p.InitialSegment)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", p.VehicleID, err)
	}
	seg, _ := g.Segment(h)
	if p.InitialDistance < 0 || p.InitialDistance > seg.Length {
		return nil, fmt.Errorf("vehicle %q: initial distance %g outside [0, %g] on segment %q",
			p.VehicleID, p.InitialDistance, seg.Length, seg.ID)
	}
	if p.Vehicle.Resistance == nil {
		p.Vehicle.Resistance = kinematics.DefaultRollingDrag()
	}
	return &SimVehicle{
		Placement: p,
		Position:  graph.Position{Segment: h, Distance: p.InitialDistance},
		Speed:     p.InitialSpeed,
		Outcome:   OutcomeNormal,
	}, nil
}

// Log is a point-in-time snapshot of a SimVehicle's state.
type Log struct {
	VehicleID VehicleID       `json:"vehicle_id"`
	Segment   graph.SegmentID `json:"segment"`
	Distance  float64         `json:"distance"`
	Speed     float64         `json:"speed"`
	Position  mgl64.Vec3      `json:"position"`
	Facing    mgl64.Vec3      `json:"facing"`
	Outcome   Outcome         `json:"outcome"`
}

// GetLog returns a point-in-time snapshot of the vehicle state. The graph
// resolves the segment handle back to its scene name.
func (v *SimVehicle) GetLog(g *graph.Graph) Log {
	return Log{
		VehicleID: v.VehicleID,
		Segment:   g.Name(v.Position.Segment),
		Distance:  v.Position.Distance,
		Speed:     v.Speed,
		Position:  v.Pose.Position,
		Facing:    v.Pose.Facing,
		Outcome:   v.Outcome,
	}
}
