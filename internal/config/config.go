package config

// this holds the resolved configuration values from CLI, env and config file
var (
	LogLevel  string  // sets the log level (zap log level values)
	LogFormat string  // text vs json
	TimeStep  float64 // overrides simulation_meta.time_step when > 0, seconds
	RunTime   float64 // overrides simulation_meta.run_time when > 0, seconds
	Workers   int     // vehicles simulated concurrently per tick; <= 1 is sequential
	Strict    bool    // graph validation problems abort setup
	Pretty    bool    // indent the JSON log output
	StdinYAML bool    // parse a scene read from stdin as YAML
)
