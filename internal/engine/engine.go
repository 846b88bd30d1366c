// Package engine implements the track simulation loop.
//
// Every tick runs the same ordered pipeline for each vehicle:
//
//  1. Gravity - the along-track component of gravity at the vehicle's coarse
//     progress on its segment changes its speed.
//
//  2. Friction - rolling resistance and drag slow the vehicle, never past rest.
//
//  3. Movement - the vehicle advances by speed*dt, crosses any segment
//     boundaries, and its world pose is re-evaluated at the arc-length
//     corrected curve parameter.
//
// Vehicles share nothing but read-only access to the graph, so a tick may
// process them concurrently; the three stages of one vehicle always run in
// order.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/log"
	"github.com/cxd309/coaster-engine/internal/vehicle"
)

// ErrInvalidTimeStep is returned for negative, NaN or infinite time steps.
var ErrInvalidTimeStep = errors.New("invalid time step")

// Engine is the simulation state: a shared static graph and the vehicles on it.
type Engine struct {
	meta     SimulationMeta
	graph    *graph.Graph
	vehicles []*vehicle.SimVehicle
	curTime  float64
	workers  int
	strict   bool
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers processes up to n vehicles concurrently per tick. Values below 2
// keep the tick sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithStrictGraph makes graph validation problems a construction error instead
// of a logged warning.
func WithStrictGraph(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// WithLogger replaces the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an Engine from a SimulationInput, building the graph and
// placing each vehicle at its initial position with its initial pose.
func New(input SimulationInput, opts ...Option) (*Engine, error) {
	e := &Engine{
		meta: input.Meta,
		log:  log.Default().Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	g, err := graph.NewGraph(input.GraphData)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	if verr := g.Validate(); verr != nil {
		if e.strict {
			return nil, fmt.Errorf("validating graph: %w", verr)
		}
		for _, issue := range multierr.Errors(verr) {
			e.log.Warn("graph problem", zap.Error(issue))
		}
	}
	e.graph = g

	e.vehicles = make([]*vehicle.SimVehicle, 0, len(input.VehicleList))
	seen := make(map[vehicle.VehicleID]bool, len(input.VehicleList))
	for _, p := range input.VehicleList {
		if seen[p.VehicleID] {
			return nil, fmt.Errorf("vehicle %q already exists", p.VehicleID)
		}
		seen[p.VehicleID] = true

		v, err := vehicle.NewSimVehicle(p, g)
		if err != nil {
			return nil, fmt.Errorf("placing vehicle: %w", err)
		}
		if seg, ok := g.Segment(v.Position.Segment); ok {
			e.updatePose(v, seg)
		}
		e.vehicles = append(e.vehicles, v)
	}
	return e, nil
}

// Graph returns the shared track graph.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Vehicles returns the live vehicle states. Callers must not mutate them while
// a Step is running.
func (e *Engine) Vehicles() []*vehicle.SimVehicle { return e.vehicles }

// Time returns the simulated seconds elapsed so far.
func (e *Engine) Time() float64 { return e.curTime }

// Meta returns the simulation metadata.
func (e *Engine) Meta() SimulationMeta { return e.meta }

// Step advances every vehicle by dt seconds and returns the resulting log row.
// It is the entry point for an external frame loop.
func (e *Engine) Step(dt float64) (SimulationLogRow, error) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return SimulationLogRow{}, fmt.Errorf("dt=%v: %w", dt, ErrInvalidTimeStep)
	}

	if e.workers > 1 && len(e.vehicles) > 1 {
		var eg errgroup.Group
		eg.SetLimit(e.workers)
		for _, v := range e.vehicles {
			eg.Go(func() error {
				e.update(v, dt)
				return nil
			})
		}
		_ = eg.Wait() // update never fails
	} else {
		for _, v := range e.vehicles {
			e.update(v, dt)
		}
	}

	e.curTime += dt
	return e.Snapshot(), nil
}

// Run executes the full simulation at the fixed time step from the metadata
// and returns the log. The first row is the initial state at t=0.
func (e *Engine) Run() (SimulationLog, error) {
	dt := e.meta.TimeStep
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return SimulationLog{}, fmt.Errorf("time_step=%v: %w", dt, ErrInvalidTimeStep)
	}

	simLog := SimulationLog{Meta: e.meta, Output: []SimulationLogRow{e.Snapshot()}}
	// tolerate accumulated rounding on the final step
	for e.curTime+dt <= e.meta.RunTime+dt*1e-6 {
		row, err := e.Step(dt)
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.3f: %w", e.curTime, err)
		}
		simLog.Output = append(simLog.Output, row)
	}
	return simLog, nil
}

// Snapshot returns the current state of every vehicle.
func (e *Engine) Snapshot() SimulationLogRow {
	logs := make([]vehicle.Log, len(e.vehicles))
	for i, v := range e.vehicles {
		logs[i] = v.GetLog(e.graph)
	}
	return SimulationLogRow{Timestamp: e.curTime, VehicleLogs: logs}
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	e, err := New(input)
	if err != nil {
		return "", err
	}

	simLog, err := e.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
