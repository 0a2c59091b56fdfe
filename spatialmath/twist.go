package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Twist is a spatial velocity: the linear velocity of a point, in m/s, and the angular velocity of
// the body it is attached to, in rad/s. Both are expressed in the base frame of the chain.
type Twist struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// NewZeroTwist returns a twist describing a body at rest.
func NewZeroTwist() Twist {
	return Twist{}
}

// Add returns the component-wise sum of two twists.
func (t Twist) Add(other Twist) Twist {
	return Twist{Linear: t.Linear.Add(other.Linear), Angular: t.Angular.Add(other.Angular)}
}

// Mul scales both components of the twist.
func (t Twist) Mul(m float64) Twist {
	return Twist{Linear: t.Linear.Mul(m), Angular: t.Angular.Mul(m)}
}

// SpeedToward returns the signed component of the linear velocity along the direction from `from`
// to `target`, and the distance between the two points. The speed is positive when the point is
// approaching the target.
func (t Twist) SpeedToward(from, target r3.Vector) (speed, distance float64) {
	distanceVector := target.Sub(from)
	distance = distanceVector.Norm()
	return t.Linear.Dot(distanceVector) / distance, distance
}

func (t Twist) String() string {
	return fmt.Sprintf("{v:(%.4f %.4f %.4f) w:(%.4f %.4f %.4f)}",
		t.Linear.X, t.Linear.Y, t.Linear.Z, t.Angular.X, t.Angular.Y, t.Angular.Z)
}
