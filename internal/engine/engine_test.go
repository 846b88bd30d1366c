package engine

import (
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/kinematics"
	"github.com/cxd309/coaster-engine/internal/vehicle"
)

func flat(id, prev, next string, x0, x1 float64) graph.SegmentData {
	return graph.SegmentData{
		ID: id,
		ControlPoints: [4]mgl64.Vec3{
			{x0, 0, 0}, {x0 + (x1-x0)/3, 0, 0}, {x0 + 2*(x1-x0)/3, 0, 0}, {x1, 0, 0},
		},
		Previous: prev,
		Next:     next,
	}
}

func coasting(id, seg string, distance, speed float64) vehicle.Placement {
	return vehicle.Placement{
		VehicleID:       id,
		InitialSegment:  seg,
		InitialDistance: distance,
		InitialSpeed:    speed,
		Vehicle:         vehicle.Vehicle{Name: "test", Resistance: kinematics.Frictionless{}},
	}
}

func newEngine(t *testing.T, input SimulationInput, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	e, err := New(input, opts...)
	require.NoError(t, err)
	return e
}

func loadLoop(t *testing.T) SimulationInput {
	t.Helper()
	input, err := LoadInput("testdata/loop.json")
	require.NoError(t, err)
	return input
}

func TestStepCrossesSegmentBoundary(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{
			flat("A", "", "B", 0, 10),
			flat("B", "A", "", 10, 20),
		}},
		VehicleList: []vehicle.Placement{coasting("car", "A", 9, 5)},
	})

	row, err := e.Step(1)
	require.NoError(t, err)

	v := e.Vehicles()[0]
	assert.Equal(t, "B", e.Graph().Name(v.Position.Segment))
	assert.InDelta(t, 4, v.Position.Distance, 1e-9)
	assert.Equal(t, 5.0, v.Speed)
	assert.Equal(t, vehicle.OutcomeNormal, v.Outcome)
	assert.InDelta(t, 14, v.Pose.Position.X(), 1e-6)
	assert.InDelta(t, 1, v.Pose.Facing.X(), 1e-9)

	assert.Equal(t, 1.0, row.Timestamp)
	require.Len(t, row.VehicleLogs, 1)
	assert.Equal(t, "B", row.VehicleLogs[0].Segment)
}

func TestStepDeadEnd(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{
			flat("A", "", "", 0, 10),
		}},
		VehicleList: []vehicle.Placement{
			coasting("forward", "A", 8, 5),
			coasting("backward", "A", 2, -5),
		},
	})

	_, err := e.Step(1)
	require.NoError(t, err)

	fwd, back := e.Vehicles()[0], e.Vehicles()[1]
	length := e.Graph().TotalLength()

	assert.Equal(t, length, fwd.Position.Distance)
	assert.Zero(t, fwd.Speed)
	assert.Equal(t, vehicle.OutcomeDeadEnd, fwd.Outcome)

	assert.Zero(t, back.Position.Distance)
	assert.Zero(t, back.Speed)
	assert.Equal(t, vehicle.OutcomeDeadEnd, back.Outcome)
}

func TestStepBrokenLinkKeepsPreviousState(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{{
			ID: "drop",
			ControlPoints: [4]mgl64.Vec3{
				{0, 10, 0}, {10.0 / 3, 20.0 / 3, 0}, {20.0 / 3, 10.0 / 3, 0}, {10, 0, 0},
			},
			Next: "missing",
		}}},
		VehicleList: []vehicle.Placement{{
			VehicleID:       "car",
			InitialSegment:  "drop",
			InitialDistance: 14,
			InitialSpeed:    5,
		}},
	})

	v := e.Vehicles()[0]
	position, speed, pose := v.Position, v.Speed, v.Pose

	// every tick runs into the missing segment; gravity must not pile up
	for range 100 {
		_, err := e.Step(0.1)
		require.NoError(t, err)
		require.Equal(t, vehicle.OutcomeBrokenLink, v.Outcome)
	}

	assert.Equal(t, position, v.Position)
	assert.Equal(t, speed, v.Speed)
	assert.Equal(t, pose, v.Pose)
	assert.InDelta(t, 10, e.Time(), 1e-9)
}

func TestStepGravityOnSlope(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{{
			ID: "lift",
			ControlPoints: [4]mgl64.Vec3{
				{0, 0, 0}, {10.0 / 3, 10.0 / 3, 0}, {20.0 / 3, 20.0 / 3, 0}, {10, 10, 0},
			},
		}}},
		VehicleList: []vehicle.Placement{coasting("car", "lift", 5, 0)},
	})

	const dt = 0.1
	_, err := e.Step(dt)
	require.NoError(t, err)

	v := e.Vehicles()[0]
	want := kinematics.GravityAcceleration * math.Sqrt2 / 2 * dt
	assert.InDelta(t, want, v.Speed, 1e-9)
	assert.Less(t, v.Position.Distance, 5.0)

	// rolling back down, so facing points against the tangent
	assert.InDelta(t, -math.Sqrt2/2, v.Pose.Facing.X(), 1e-9)
	assert.InDelta(t, -math.Sqrt2/2, v.Pose.Facing.Y(), 1e-9)
}

func TestStepKeepsFacingOnDegenerateTangent(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{{
			ID: "kink",
			ControlPoints: [4]mgl64.Vec3{
				{0, 0, 0}, {0, 0, 0}, {10, 0, 0}, {10, 0, 0},
			},
		}}},
		VehicleList: []vehicle.Placement{coasting("car", "kink", 0, 0)},
	})

	v := e.Vehicles()[0]
	assert.Equal(t, mgl64.Vec3{}, v.Pose.Facing)

	v.Pose.Facing = mgl64.Vec3{0, 0, 1}
	_, err := e.Step(0.5)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, v.Pose.Facing)
	assert.Equal(t, vehicle.OutcomeNormal, v.Outcome)
}

func TestStepDanglingSegment(t *testing.T) {
	e := newEngine(t, SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{
			flat("A", "", "", 0, 10),
		}},
		VehicleList: []vehicle.Placement{coasting("car", "A", 3, 2)},
	})

	v := e.Vehicles()[0]
	v.Position.Segment = 99
	before := *v

	_, err := e.Step(1)
	require.NoError(t, err)

	assert.Equal(t, before.Position, v.Position)
	assert.Equal(t, before.Speed, v.Speed)
	assert.Equal(t, before.Pose, v.Pose)
	assert.Equal(t, vehicle.OutcomeDanglingSegment, v.Outcome)
}

func TestStepInvalidTimeStep(t *testing.T) {
	e := newEngine(t, loadLoop(t))
	for _, dt := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		_, err := e.Step(dt)
		assert.ErrorIs(t, err, ErrInvalidTimeStep, "dt=%v", dt)
	}
	assert.Zero(t, e.Time())

	_, err := e.Step(0)
	assert.NoError(t, err)
}

func TestParallelMatchesSequential(t *testing.T) {
	input := loadLoop(t)
	input.VehicleList = append(input.VehicleList,
		coasting("car-3", "climb", 1, 8),
		coasting("car-4", "descent", 4, -2),
	)

	seq, err := newEngine(t, input).Run()
	require.NoError(t, err)
	par, err := newEngine(t, input, WithWorkers(4)).Run()
	require.NoError(t, err)

	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel run mismatch (-sequential +parallel):\n%s", diff)
	}
}

func TestRun(t *testing.T) {
	e := newEngine(t, loadLoop(t))
	simLog, err := e.Run()
	require.NoError(t, err)

	assert.Equal(t, "hill-loop", simLog.Meta.SimulationID)
	require.Len(t, simLog.Output, 41)

	first := simLog.Output[0]
	assert.Zero(t, first.Timestamp)
	require.Len(t, first.VehicleLogs, 2)
	assert.Equal(t, "straight", first.VehicleLogs[0].Segment)
	assert.Equal(t, 12.0, first.VehicleLogs[0].Speed)
	assert.Equal(t, mgl64.Vec3{}, first.VehicleLogs[0].Position)
	assert.InDelta(t, 2, simLog.Output[40].Timestamp, 1e-9)

	for _, row := range simLog.Output {
		for _, vl := range row.VehicleLogs {
			h, err := e.Graph().Lookup(vl.Segment)
			require.NoError(t, err)
			seg, _ := e.Graph().Segment(h)
			assert.GreaterOrEqual(t, vl.Distance, 0.0)
			assert.LessOrEqual(t, vl.Distance, seg.Length)
		}
	}
}

func TestRunRejectsZeroTimeStep(t *testing.T) {
	input := loadLoop(t)
	input.Meta.TimeStep = 0
	_, err := newEngine(t, input).Run()
	assert.ErrorIs(t, err, ErrInvalidTimeStep)
}

func TestRunJSON(t *testing.T) {
	raw, err := os.ReadFile("testdata/loop.json")
	require.NoError(t, err)

	out, err := RunJSON(string(raw))
	require.NoError(t, err)

	var simLog SimulationLog
	require.NoError(t, json.Unmarshal([]byte(out), &simLog))
	assert.Equal(t, "hill-loop", simLog.Meta.SimulationID)
	assert.Len(t, simLog.Output, 41)

	_, err = RunJSON("{")
	assert.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	dangling := SimulationInput{
		GraphData: graph.GraphData{Segments: []graph.SegmentData{
			flat("A", "", "missing", 0, 10),
		}},
	}
	_, err := New(dangling, WithLogger(zaptest.NewLogger(t)), WithStrictGraph(true))
	assert.ErrorIs(t, err, graph.ErrDanglingLink)

	_, err = New(dangling, WithLogger(zaptest.NewLogger(t)))
	assert.NoError(t, err, "non-strict graphs only warn")

	dup := loadLoop(t)
	dup.VehicleList = append(dup.VehicleList, dup.VehicleList[0])
	_, err = New(dup, WithLogger(zaptest.NewLogger(t)))
	assert.Error(t, err)

	misplaced := loadLoop(t)
	misplaced.VehicleList[0].InitialSegment = "nowhere"
	_, err = New(misplaced, WithLogger(zaptest.NewLogger(t)))
	assert.Error(t, err)
}

func TestLoadInput(t *testing.T) {
	fromJSON, err := LoadInput("testdata/loop.json")
	require.NoError(t, err)
	fromYAML, err := LoadInput("testdata/loop.yaml")
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, kinematics.Frictionless{}, fromYAML.VehicleList[1].Vehicle.Resistance)

	_, err = LoadInput("testdata/absent.json")
	assert.Error(t, err)
}

func TestIsYAMLPath(t *testing.T) {
	tests := map[string]bool{
		"scene.yaml":     true,
		"scene.YML":      true,
		"scene.json":     false,
		"dir.yaml/scene": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsYAMLPath(path), path)
	}
}
