package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoModelInformation is used when there is no model information.
	ErrNoModelInformation = errors.New("no model information")

	// ErrNeedOneEndEffector is used when a model has more than one end effector, or none.
	ErrNeedOneEndEffector = errors.New("need exactly one end effector")

	// ErrCircularReference is used when the model contains a circular reference.
	ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

	// ErrUnknownLink is used when a link name is not part of the chain.
	ErrUnknownLink = errors.New("link is not part of the kinematic chain")
)

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match the DoF of the frame.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of dimensions given (%d) does not match number of dimensions for the kinematic chain (%d)",
		actual, expected)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported by the current model
// parsing implementation.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// NewReservedWordError is used when a link or joint is named with a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewFrameNotInListOfTransformsError returns an error indicating that a frame of the given name
// is missing from the provided list of transforms.
func NewFrameNotInListOfTransformsError(frameName string) error {
	return errors.Errorf("frame named '%s' not in the list of transforms", frameName)
}

// NewParentFrameNotInMapOfParentsError returns an error indicating that the parent of the given frame
// is missing from the map of parents.
func NewParentFrameNotInMapOfParentsError(frameName string) error {
	return errors.Errorf("parent frame for frame named '%s' not in map of parents", frameName)
}

// NewInvalidMaxSpeedError is used when a joint is given a max speed that cannot be used for timing.
func NewInvalidMaxSpeedError(jointName string, speed float64) error {
	return fmt.Errorf("joint %q has invalid max speed %v, must be > 0", jointName, speed)
}
