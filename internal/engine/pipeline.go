package engine

import (
	"go.uber.org/zap"

	"github.com/cxd309/coaster-engine/internal/curve"
	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/kinematics"
	"github.com/cxd309/coaster-engine/internal/vehicle"
)

// tick carries one vehicle through one pass of the pipeline.
type tick struct {
	v   *vehicle.SimVehicle
	seg *graph.Segment
	dt  float64
}

type stage func(*Engine, *tick)

// pipeline is the fixed per-vehicle order; movement consumes the speed the
// first two stages produce.
var pipeline = [...]stage{
	(*Engine).applyGravity,
	(*Engine).applyFriction,
	(*Engine).applyMovement,
}

// update runs the pipeline for a single vehicle. A vehicle whose segment
// handle no longer resolves, or whose move runs into a broken link, keeps
// the state it had before this tick.
func (e *Engine) update(v *vehicle.SimVehicle, dt float64) {
	seg, ok := e.graph.Segment(v.Position.Segment)
	if !ok {
		v.Outcome = vehicle.OutcomeDanglingSegment
		e.log.Warn("vehicle references a missing segment, skipping tick",
			zap.String("vehicle", v.VehicleID),
			zap.Int32("segment", int32(v.Position.Segment)))
		return
	}

	position, speed, pose := v.Position, v.Speed, v.Pose
	v.Outcome = vehicle.OutcomeNormal
	tk := &tick{v: v, seg: seg, dt: dt}
	for _, s := range pipeline {
		s(e, tk)
	}
	if v.Outcome == vehicle.OutcomeBrokenLink {
		v.Position, v.Speed, v.Pose = position, speed, pose
	}
}

// applyGravity samples the slope at the plain distance/length ratio. That
// ratio is not arc-length corrected; only the local slope direction matters.
func (e *Engine) applyGravity(tk *tick) {
	progress := tk.seg.Progress(tk.v.Position.Distance)
	_, tangent := tk.seg.Curve.Evaluate(progress)
	tk.v.Speed = kinematics.ApplyGravity(tk.v.Speed, tangent.Y(), tk.dt)
}

func (e *Engine) applyFriction(tk *tick) {
	tk.v.Speed = kinematics.ApplyResistance(tk.v.Vehicle.Resistance, tk.v.Speed, tk.dt)
}

func (e *Engine) applyMovement(tk *tick) {
	v := tk.v
	v.Position.Distance += v.Speed * tk.dt

	pos, stop, err := e.graph.Resolve(v.Position)
	v.Position = pos
	switch stop {
	case graph.StopDeadEnd:
		v.Speed = 0
		v.Outcome = vehicle.OutcomeDeadEnd
		e.log.Debug("vehicle stopped at dead end",
			zap.String("vehicle", v.VehicleID),
			zap.String("segment", e.graph.Name(pos.Segment)))
	case graph.StopBrokenLink:
		v.Outcome = vehicle.OutcomeBrokenLink
		e.log.Warn("traversal aborted on broken link, tick abandoned",
			zap.String("vehicle", v.VehicleID),
			zap.String("segment", e.graph.Name(pos.Segment)),
			zap.Error(err))
		return
	}

	if seg, ok := e.graph.Segment(pos.Segment); ok {
		e.updatePose(v, seg)
	}
}

// updatePose evaluates the world position at the arc-length corrected
// parameter. Facing follows the direction of travel; a degenerate tangent
// keeps the previous facing.
func (e *Engine) updatePose(v *vehicle.SimVehicle, seg *graph.Segment) {
	t := seg.Table.ParameterForDistance(v.Position.Distance)
	position, tangent := seg.Curve.Evaluate(t)
	v.Pose.Position = position

	if curve.IsZero(tangent) {
		e.log.Debug("degenerate tangent, keeping facing",
			zap.String("vehicle", v.VehicleID),
			zap.String("segment", seg.ID),
			zap.Float64("t", t))
		return
	}
	if v.Speed < 0 {
		tangent = tangent.Mul(-1)
	}
	v.Pose.Facing = tangent
}
