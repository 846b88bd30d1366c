package kinematics

// GravityAcceleration is the vertical gravitational acceleration, m/s².
const GravityAcceleration = -9.81

// ApplyGravity integrates the along-track component of gravity over dt with
// semi-implicit Euler. verticalTangent is the Y component of the unit tangent
// in the direction of increasing distance: climbing slows a forward-moving
// vehicle and descending speeds it up.
func ApplyGravity(speed, verticalTangent, dt float64) float64 {
	return speed + GravityAcceleration*verticalTangent*dt
}
