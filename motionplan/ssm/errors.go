package ssm

import "github.com/pkg/errors"

// Conditions under which an estimate cannot be trusted. None of them is the unsafe outcome,
// which is reported as the Unsafe scaling factor with a nil error.
var (
	ErrZeroLengthConnection = errors.New("connection has zero length")
	ErrInvalidStepSize      = errors.New("max step size must be > 0")
	ErrDirectionMismatch    = errors.New("joint velocity does not point along the connection")
	ErrEndpointDrift        = errors.New("last sample does not coincide with the end of the connection")
	ErrScalingBelowOne      = errors.New("scaling factor is below 1")
	ErrNoMaxJointSpeeds     = errors.New("max joint speeds must be > 0, one per joint")
	ErrUnknownPoi           = errors.New("poi is not a link of the kinematic chain")
	ErrInvalidParameter     = errors.New("invalid safety parameter")
)

func newInvalidParameterError(name string, value float64) error {
	return errors.Wrapf(ErrInvalidParameter, "%s cannot be %v", name, value)
}
