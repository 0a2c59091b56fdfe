package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
)

// KinematicChain is the kinematics capability consumed by the safety estimators. Poses and Twists
// are aligned index-for-index with LinkNames and are expressed in the chain's base frame.
// Implementations may keep scratch state, so a chain must not be shared between goroutines; use
// Clone to get an independent copy.
type KinematicChain interface {
	Name() string

	// DoF is the number of joint inputs the chain expects.
	DoF() int

	Limits() []Limit

	// LinkNames lists the links in chain order, base first.
	LinkNames() []string

	// MaxSpeeds returns the max speed of each joint, in the same order as the inputs.
	MaxSpeeds() []float64

	// Poses returns the pose of every link origin at configuration q.
	Poses(q []Input) ([]spatialmath.Pose, error)

	// Twists returns the spatial velocity of every link origin at configuration q under joint velocity dq.
	Twists(q, dq []Input) ([]spatialmath.Twist, error)

	Clone() KinematicChain
}

// jointState is the world-frame axis and origin of a joint at some configuration.
type jointState struct {
	axis      r3.Vector
	origin    r3.Vector
	prismatic bool
	input     int
}

// SerialChain is a KinematicChain built from an ordered list of frames, base to tip. Static frames
// are links; every link origin is a reference point. Joint frames move the links that follow them.
type SerialChain struct {
	name string
	// ordTransforms is the list of transforms ordered from base to end effector
	ordTransforms []Frame
	limits        []Limit
	maxSpeeds     []float64
	linkNames     []string

	// scratch, overwritten by every forward pass
	joints   []jointState
	linkPose []spatialmath.Pose
}

// NewSerialChain constructs a chain from frames ordered base to end effector.
func NewSerialChain(name string, ordTransforms []Frame) (*SerialChain, error) {
	c := &SerialChain{name: name, ordTransforms: ordTransforms}
	for _, f := range ordTransforms {
		if j, ok := f.(Joint); ok {
			if !(j.MaxSpeed() > 0) {
				return nil, NewInvalidMaxSpeedError(j.Name(), j.MaxSpeed())
			}
			c.limits = append(c.limits, j.DoF()...)
			c.maxSpeeds = append(c.maxSpeeds, j.MaxSpeed())
			continue
		}
		if len(f.DoF()) != 0 {
			return nil, NewUnsupportedJointTypeError(f.Name())
		}
		c.linkNames = append(c.linkNames, f.Name())
	}
	if dupes := lo.FindDuplicates(c.linkNames); len(dupes) > 0 {
		return nil, errors.Errorf("duplicate link name %q in chain %q", dupes[0], name)
	}
	c.joints = make([]jointState, 0, len(c.maxSpeeds))
	c.linkPose = make([]spatialmath.Pose, 0, len(c.linkNames))
	return c, nil
}

// Name returns the name of this chain.
func (c *SerialChain) Name() string {
	return c.name
}

// DoF returns the number of joint inputs.
func (c *SerialChain) DoF() int {
	return len(c.limits)
}

// Limits returns the motion limits of each joint.
func (c *SerialChain) Limits() []Limit {
	return c.limits
}

// LinkNames returns the link names, base first.
func (c *SerialChain) LinkNames() []string {
	return c.linkNames
}

// MaxSpeeds returns the max speed of each joint.
func (c *SerialChain) MaxSpeeds() []float64 {
	return c.maxSpeeds
}

// Transform returns the pose of the end of the chain.
func (c *SerialChain) Transform(q []Input) (spatialmath.Pose, error) {
	if err := c.forward(q); err != nil {
		return nil, err
	}
	if len(c.linkPose) == 0 {
		return spatialmath.NewZeroPose(), nil
	}
	return c.linkPose[len(c.linkPose)-1], nil
}

// Poses returns the pose of every link origin.
func (c *SerialChain) Poses(q []Input) ([]spatialmath.Pose, error) {
	if err := c.forward(q); err != nil {
		return nil, err
	}
	poses := make([]spatialmath.Pose, len(c.linkPose))
	copy(poses, c.linkPose)
	return poses, nil
}

// Twists returns the twist of every link origin, computed from the geometric jacobian of the joints
// preceding it.
func (c *SerialChain) Twists(q, dq []Input) ([]spatialmath.Twist, error) {
	if len(dq) != c.DoF() {
		return nil, NewIncorrectDoFError(len(dq), c.DoF())
	}
	if err := c.forward(q); err != nil {
		return nil, err
	}
	twists := make([]spatialmath.Twist, 0, len(c.linkPose))
	next := 0
	linkIdx := 0
	for _, f := range c.ordTransforms {
		if _, ok := f.(Joint); ok {
			next++
			continue
		}
		p := c.linkPose[linkIdx].Point()
		twist := spatialmath.NewZeroTwist()
		for _, js := range c.joints[:next] {
			rate := dq[js.input]
			if js.prismatic {
				twist.Linear = twist.Linear.Add(js.axis.Mul(rate))
				continue
			}
			twist.Angular = twist.Angular.Add(js.axis.Mul(rate))
			twist.Linear = twist.Linear.Add(js.axis.Cross(p.Sub(js.origin)).Mul(rate))
		}
		twists = append(twists, twist)
		linkIdx++
	}
	return twists, nil
}

// Clone returns a copy of the chain with its own scratch space. Frames are immutable and shared.
func (c *SerialChain) Clone() KinematicChain {
	clone := &SerialChain{
		name:          c.name,
		ordTransforms: append([]Frame{}, c.ordTransforms...),
		limits:        append([]Limit{}, c.limits...),
		maxSpeeds:     append([]float64{}, c.maxSpeeds...),
		linkNames:     append([]string{}, c.linkNames...),
	}
	clone.joints = make([]jointState, 0, len(clone.maxSpeeds))
	clone.linkPose = make([]spatialmath.Pose, 0, len(clone.linkNames))
	return clone
}

// AreJointPositionsValid checks whether the given array of joint positions violates any joint limits.
func (c *SerialChain) AreJointPositionsValid(pos []Input) bool {
	if len(pos) != len(c.limits) {
		return false
	}
	for i, limit := range c.limits {
		if pos[i] < limit.Min || pos[i] > limit.Max {
			return false
		}
	}
	return true
}

// forward fills the scratch joint states and link poses for configuration q.
func (c *SerialChain) forward(q []Input) error {
	if len(q) != c.DoF() {
		return NewIncorrectDoFError(len(q), c.DoF())
	}
	c.joints = c.joints[:0]
	c.linkPose = c.linkPose[:0]

	// Start at ((1+0i+0j+0k)+(+0+0i+0j+0k)ϵ)
	composed := spatialmath.NewZeroPose()
	posIdx := 0
	for _, transform := range c.ordTransforms {
		dof := len(transform.DoF()) + posIdx
		input := q[posIdx:dof]

		if j, ok := transform.(Joint); ok {
			jointFrame := spatialmath.Compose(composed, j.Origin())
			c.joints = append(c.joints, jointState{
				axis:      spatialmath.RotateVector(jointFrame.Orientation(), j.Axis()),
				origin:    jointFrame.Point(),
				prismatic: j.Prismatic(),
				input:     posIdx,
			})
		}
		posIdx = dof

		pose, err := transform.Transform(input)
		if err != nil {
			return err
		}
		composed = spatialmath.Compose(composed, pose)
		if _, ok := transform.(Joint); !ok {
			c.linkPose = append(c.linkPose, composed)
		}
	}
	return nil
}
