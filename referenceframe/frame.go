package referenceframe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/utils"
)

// World is the name of the base frame every chain is expressed in.
const World = "world"

// Joint types understood by the model parsers.
const (
	RevoluteJoint   = "revolute"
	ContinuousJoint = "continuous"
	PrismaticJoint  = "prismatic"
	FixedJoint      = "fixed"
)

// Limit represents the limits of motion for a referenceframe.
type Limit struct {
	Min float64
	Max float64
}

func limitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}
	const epsilon = 1e-5
	for i := range a {
		if !utils.Float64AlmostEqual(a[i].Min, b[i].Min, epsilon) || !utils.Float64AlmostEqual(a[i].Max, b[i].Max, epsilon) {
			return false
		}
	}
	return true
}

// Frame represents a reference frame, e.g. an arm, a joint, a gripper, a board, etc.
type Frame interface {
	// Name returns the name of the Frame
	Name() string

	// Transform is the pose (rotation and translation) that goes FROM current frame TO parent's referenceframe.
	Transform([]Input) (spatialmath.Pose, error)

	// DoF will return a slice with length equal to the number of joints/degrees of freedom.
	// Each element describes the min and max movement limit of that joint/degree of freedom.
	// For robot parts that don't move, it returns an empty slice.
	DoF() []Limit
}

// Joint is a Frame with exactly one degree of freedom, moving about or along Axis.
type Joint interface {
	Frame

	// Axis is the unit axis of motion expressed in the joint's own frame.
	Axis() r3.Vector

	// Prismatic reports whether the joint translates along Axis instead of rotating about it.
	Prismatic() bool

	// MaxSpeed is the maximum joint speed, in rad/s for revolute joints and m/s for prismatic ones.
	MaxSpeed() float64

	// Origin is the fixed pose of the joint frame relative to its parent, applied before the motion.
	Origin() spatialmath.Pose
}

// a static Frame is a simple corrdinate system that encodes a fixed translation and rotation
// from the current Frame to the parent referenceframe.
type staticFrame struct {
	name      string
	transform spatialmath.Pose
}

// NewStaticFrame creates a frame given a pose relative to its parent. The pose is fixed for all time.
// Pose is not allowed to be nil.
func NewStaticFrame(name string, pose spatialmath.Pose) (Frame, error) {
	if pose == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{name, pose}, nil
}

// NewZeroStaticFrame creates a frame with no translation or orientation changes.
func NewZeroStaticFrame(name string) Frame {
	return &staticFrame{name, spatialmath.NewZeroPose()}
}

// Name is the name of the frame.
func (sf *staticFrame) Name() string {
	return sf.name
}

// Transform returns the pose associated with this static referenceframe.
func (sf *staticFrame) Transform(input []Input) (spatialmath.Pose, error) {
	if len(input) != 0 {
		return nil, NewIncorrectDoFError(len(input), 0)
	}
	return sf.transform, nil
}

// DoF are the degrees of freedom of the transform. In the staticFrame, it is always 0.
func (sf *staticFrame) DoF() []Limit {
	return []Limit{}
}

// a prismatic Frame is a frame that can translate without rotation in any/all of the X, Y, and Z directions.
type translationalFrame struct {
	name     string
	origin   spatialmath.Pose
	axis     r3.Vector
	limit    []Limit
	maxSpeed float64
}

// NewTranslationalFrame creates a frame given a name, the axis in which to translate, the limits of
// that translation and the maximum speed along it. A nil origin places the joint at its parent.
func NewTranslationalFrame(name string, origin spatialmath.Pose, axis r3.Vector, limit Limit, maxSpeed float64) (Joint, error) {
	if axis.Norm() == 0 {
		return nil, errors.Errorf("joint %q has a zero axis", name)
	}
	if origin == nil {
		origin = spatialmath.NewZeroPose()
	}
	return &translationalFrame{
		name:     name,
		origin:   origin,
		axis:     axis.Normalize(),
		limit:    []Limit{limit},
		maxSpeed: maxSpeed,
	}, nil
}

// Name is the name of the frame.
func (pf *translationalFrame) Name() string {
	return pf.name
}

// Transform returns a pose translated by the amount specified in the inputs.
func (pf *translationalFrame) Transform(input []Input) (spatialmath.Pose, error) {
	if len(input) != 1 {
		return nil, NewIncorrectDoFError(len(input), 1)
	}
	return spatialmath.Compose(pf.origin, spatialmath.NewPoseFromPoint(pf.axis.Mul(input[0]))), nil
}

// DoF are the degrees of freedom of the transform.
func (pf *translationalFrame) DoF() []Limit {
	return pf.limit
}

func (pf *translationalFrame) Axis() r3.Vector {
	return pf.axis
}

func (pf *translationalFrame) Prismatic() bool {
	return true
}

func (pf *translationalFrame) MaxSpeed() float64 {
	return pf.maxSpeed
}

func (pf *translationalFrame) Origin() spatialmath.Pose {
	return pf.origin
}

type rotationalFrame struct {
	name     string
	origin   spatialmath.Pose
	rotAxis  r3.Vector
	limit    []Limit
	maxSpeed float64
}

// NewRotationalFrame creates a new rotationalFrame struct.
// A standard revolute joint will have 1 DoF.
func NewRotationalFrame(name string, origin spatialmath.Pose, axis r3.Vector, limit Limit, maxSpeed float64) (Joint, error) {
	if axis.Norm() == 0 {
		return nil, errors.Errorf("joint %q has a zero axis", name)
	}
	if origin == nil {
		origin = spatialmath.NewZeroPose()
	}
	return &rotationalFrame{
		name:     name,
		origin:   origin,
		rotAxis:  axis.Normalize(),
		limit:    []Limit{limit},
		maxSpeed: maxSpeed,
	}, nil
}

// Transform returns the Pose representing the frame's 6DoF motion in space. Requires a slice
// of inputs that has length equal to the degrees of freedom of the frame.
func (rf *rotationalFrame) Transform(input []Input) (spatialmath.Pose, error) {
	if len(input) != 1 {
		return nil, NewIncorrectDoFError(len(input), 1)
	}
	// Create a copy of the r4aa for thread safety
	motion := spatialmath.NewPoseFromOrientation(
		&spatialmath.R4AA{Theta: input[0], RX: rf.rotAxis.X, RY: rf.rotAxis.Y, RZ: rf.rotAxis.Z},
	)
	return spatialmath.Compose(rf.origin, motion), nil
}

// DoF returns the number of degrees of freedom that a joint has. This would be 1 for a standard revolute joint.
func (rf *rotationalFrame) DoF() []Limit {
	return rf.limit
}

// Name returns the name of the referenceframe.
func (rf *rotationalFrame) Name() string {
	return rf.name
}

func (rf *rotationalFrame) Axis() r3.Vector {
	return rf.rotAxis
}

func (rf *rotationalFrame) Prismatic() bool {
	return false
}

func (rf *rotationalFrame) MaxSpeed() float64 {
	return rf.maxSpeed
}

func (rf *rotationalFrame) Origin() spatialmath.Pose {
	return rf.origin
}
