package engine

import (
	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/vehicle"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta        SimulationMeta      `json:"simulation_meta"`
	GraphData   graph.GraphData     `json:"graph_data"`
	VehicleList []vehicle.Placement `json:"vehicle_list"`
}

// SimulationLogRow is the state of all vehicles at a single simulation timestep.
type SimulationLogRow struct {
	Timestamp   float64       `json:"timestamp"` // seconds
	VehicleLogs []vehicle.Log `json:"vehicle_logs"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}
