// Package kinematics holds the per-tick speed integrators for a vehicle bound
// to a track: gravity along the local slope and resistance opposing motion.
//
// Adding a new resistance model requires only implementing ResistanceModel and
// registering it in Decode; the engine itself never needs to change.
package kinematics

import (
	"encoding/json"
	"fmt"
	"math"
)

// RestSpeed is the magnitude below which a vehicle counts as at rest and no
// resistance is applied, avoiding sign oscillation around zero.
const RestSpeed = 0.001

// ResistanceModel is the friction contract every implementation must satisfy.
// Speeds are signed m/s along the track, time in seconds.
type ResistanceModel interface {
	// Name returns the JSON discriminator of the model.
	Name() string

	// Reduction returns the non-negative speed magnitude removed over dt
	// seconds when travelling at speed.
	Reduction(speed, dt float64) float64
}

// ApplyResistance decelerates speed by m over dt seconds, always against the
// direction of travel. A reduction that would reverse the vehicle stops it at
// exactly zero instead.
func ApplyResistance(m ResistanceModel, speed, dt float64) float64 {
	if m == nil || math.Abs(speed) < RestSpeed {
		return speed
	}
	direction := math.Copysign(1, speed)
	next := speed - m.Reduction(speed, dt)*direction
	if next*direction <= 0 {
		return 0
	}
	return next
}

// modelDisc is the minimum JSON structure needed to read the model discriminator.
type modelDisc struct {
	Model string `json:"model"`
}

// Decode builds a ResistanceModel from a JSON object carrying a "model"
// discriminator. An empty message yields DefaultRollingDrag.
//
// Supported models:
//   - "rolling_drag": constant rolling resistance plus quadratic drag.
//   - "none": frictionless.
func Decode(raw json.RawMessage) (ResistanceModel, error) {
	if len(raw) == 0 {
		return DefaultRollingDrag(), nil
	}

	var disc modelDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("reading resistance model discriminator: %w", err)
	}

	switch disc.Model {
	case RollingDragModelName, "":
		m := DefaultRollingDrag()
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing %s resistance: %w", RollingDragModelName, err)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	case FrictionlessModelName:
		return Frictionless{}, nil
	default:
		return nil, fmt.Errorf("unknown resistance model %q", disc.Model)
	}
}

// Encode is the inverse of Decode.
func Encode(m ResistanceModel) (json.RawMessage, error) {
	switch v := m.(type) {
	case RollingDrag:
		return json.Marshal(struct {
			Model string `json:"model"`
			RollingDrag
		}{Model: v.Name(), RollingDrag: v})
	case nil:
		return nil, nil
	default:
		return json.Marshal(modelDisc{Model: m.Name()})
	}
}
