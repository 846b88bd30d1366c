package kinematics

import "fmt"

const (
	// RollingDragModelName is the JSON discriminator string for RollingDrag.
	RollingDragModelName = "rolling_drag"
	// FrictionlessModelName is the JSON discriminator string for Frictionless.
	FrictionlessModelName = "none"

	// DefaultDragFactor is the quadratic drag coefficient, 1/m.
	DefaultDragFactor = 0.0025
	// DefaultRollingResistance is the constant rolling deceleration, m/s².
	DefaultRollingResistance = 0.25
)

// RollingDrag combines a speed-independent rolling term with quadratic
// aerodynamic drag. Both coefficients are non-negative magnitudes.
//
// JSON discriminator: "model": "rolling_drag"
type RollingDrag struct {
	DragFactor        float64 `json:"drag_factor"`        // 1/m
	RollingResistance float64 `json:"rolling_resistance"` // m/s²
}

// DefaultRollingDrag returns the coefficients used when a vehicle names none.
func DefaultRollingDrag() RollingDrag {
	return RollingDrag{DragFactor: DefaultDragFactor, RollingResistance: DefaultRollingResistance}
}

func (r RollingDrag) Name() string { return RollingDragModelName }

// Reduction is rolling_resistance*dt + drag_factor*speed²*dt.
func (r RollingDrag) Reduction(speed, dt float64) float64 {
	rolling := r.RollingResistance * dt
	drag := r.DragFactor * speed * speed * dt
	return rolling + drag
}

// Validate rejects negative coefficients, which would accelerate the vehicle.
func (r RollingDrag) Validate() error {
	if r.DragFactor < 0 {
		return fmt.Errorf("drag_factor must be non-negative, got %g", r.DragFactor)
	}
	if r.RollingResistance < 0 {
		return fmt.Errorf("rolling_resistance must be non-negative, got %g", r.RollingResistance)
	}
	return nil
}

// Frictionless never slows the vehicle.
//
// JSON discriminator: "model": "none"
type Frictionless struct{}

func (Frictionless) Name() string { return FrictionlessModelName }

func (Frictionless) Reduction(float64, float64) float64 { return 0 }
