//go:build js && wasm

// Command wasm exposes the coaster engine to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	inspectTrack(jsonString) -> {segments, loops, problems}
//
// runSimulation takes a JSON-encoded SimulationInput and returns the
// JSON-encoded SimulationLog. Unlike `coaster run` there are no overrides:
// the time step and run time come from simulation_meta, vehicles are
// stepped sequentially, and graph problems are never fatal.
package main

import (
	"encoding/json"
	"syscall/js"

	"go.uber.org/multierr"

	"github.com/cxd309/coaster-engine/internal/engine"
	"github.com/cxd309/coaster-engine/internal/graph"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("inspectTrack", js.FuncOf(inspectTrack))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func inspectTrack(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	var input engine.SimulationInput
	if err := json.Unmarshal([]byte(args[0].String()), &input); err != nil {
		return map[string]any{"error": err.Error()}
	}
	g, err := graph.NewGraph(input.GraphData)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}

	segments := []any{}
	for _, h := range g.Handles() {
		s, _ := g.Segment(h)
		segments = append(segments, map[string]any{"id": s.ID, "length": s.Length})
	}
	loops := []any{}
	for _, l := range g.Loops() {
		names := []any{}
		for _, h := range l.Segments {
			names = append(names, g.Name(h))
		}
		loops = append(loops, map[string]any{"segments": names, "closed": l.Closed, "length": l.Length})
	}
	problems := []any{}
	for _, issue := range multierr.Errors(g.Validate()) {
		problems = append(problems, issue.Error())
	}
	return map[string]any{"segments": segments, "loops": loops, "problems": problems}
}
