package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"
)

// ParseInput decodes a scene. YAML is converted to JSON first so the same
// field names and discriminators apply to both formats.
func ParseInput(data []byte, isYAML bool) (SimulationInput, error) {
	if isYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return SimulationInput{}, fmt.Errorf("invalid input YAML: %w", err)
		}
		data = converted
	}

	var input SimulationInput
	if err := json.Unmarshal(data, &input); err != nil {
		return SimulationInput{}, fmt.Errorf("invalid input JSON: %w", err)
	}
	return input, nil
}

// LoadInput reads a scene file; .yaml and .yml files are parsed as YAML,
// anything else as JSON.
func LoadInput(path string) (SimulationInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationInput{}, err
	}
	input, err := ParseInput(data, IsYAMLPath(path))
	if err != nil {
		return SimulationInput{}, fmt.Errorf("%s: %w", path, err)
	}
	return input, nil
}

// IsYAMLPath reports whether path names a YAML file by extension.
func IsYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
