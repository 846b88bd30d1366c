package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cxd309/coaster-engine/internal/config"
	"github.com/cxd309/coaster-engine/internal/engine"
	"github.com/cxd309/coaster-engine/internal/log"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "runs a simulation and writes the log as JSON to stdout",
		Long: `Runs the scene at the fixed time step from its simulation_meta and writes
the full simulation log to stdout. Without a scene argument (or with "-") the
scene is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readScene(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runSimulation(cmd.OutOrStdout(), input)
		},
	}

	cmd.Flags().Float64Var(&config.TimeStep, "time-step", 0,
		"overrides simulation_meta.time_step (seconds)")
	cmd.Flags().Float64Var(&config.RunTime, "run-time", 0,
		"overrides simulation_meta.run_time (seconds)")
	cmd.Flags().IntVarP(&config.Workers, "workers", "w", 1,
		"number of vehicles simulated concurrently per tick")
	cmd.Flags().BoolVar(&config.Pretty, "pretty", false,
		"indent the JSON output")
	cmd.Flags().BoolVar(&config.StdinYAML, "yaml", false,
		"parse a scene read from stdin as YAML")

	return cmd
}

func readScene(stdin io.Reader, args []string) (engine.SimulationInput, error) {
	if len(args) == 1 && args[0] != "-" {
		return engine.LoadInput(args[0])
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return engine.SimulationInput{}, fmt.Errorf("reading stdin: %w", err)
	}
	return engine.ParseInput(data, config.StdinYAML)
}

func runSimulation(out io.Writer, input engine.SimulationInput) error {
	if config.TimeStep > 0 {
		input.Meta.TimeStep = config.TimeStep
	}
	if config.RunTime > 0 {
		input.Meta.RunTime = config.RunTime
	}

	e, err := engine.New(input,
		engine.WithWorkers(config.Workers),
		engine.WithStrictGraph(config.Strict))
	if err != nil {
		return err
	}

	logger := log.Default().Named("run")
	logger.Info("starting simulation",
		zap.String("simulation", input.Meta.SimulationID),
		zap.Int("vehicles", len(input.VehicleList)),
		zap.Float64("runTime", input.Meta.RunTime),
		zap.Float64("timeStep", input.Meta.TimeStep))

	simLog, err := e.Run()
	if err != nil {
		return err
	}
	logger.Info("simulation finished", zap.Int("rows", len(simLog.Output)))

	enc := json.NewEncoder(out)
	if config.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(simLog)
}
