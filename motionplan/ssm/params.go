package ssm

import (
	"math"

	"go.uber.org/multierr"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/utils"
)

// Defaults used when a parameter is not configured. Distances are in meters, times in seconds.
const (
	defaultMaxStepSize   = 0.05
	defaultMinDistance   = 0.2
	defaultReactionTime  = 0.15
	defaultMaxCartAcc    = 2.5
	defaultSelfDistance  = 0.0
	defaultHumanVelocity = 0.0
)

// SafetyParams holds the speed and separation monitoring parameters of an estimator.
type SafetyParams struct {
	// MaxStepSize is the configuration space distance between consecutive samples of a connection.
	MaxStepSize float64
	// MinDistance is the keep-out radius around each obstacle, in meters.
	MinDistance float64
	// ReactionTime is the time, in seconds, the system needs to start braking.
	ReactionTime float64
	// MaxCartAcc is the maximum cartesian deceleration of the robot, in m/s^2.
	MaxCartAcc float64
	// SelfDistance is the distance at which an obstacle is considered part of the robot itself.
	SelfDistance float64
	// HumanVelocity is the speed, in m/s, at which an obstacle may approach the robot.
	HumanVelocity float64
}

// DefaultSafetyParams returns the parameters used when nothing else is configured.
func DefaultSafetyParams() SafetyParams {
	return SafetyParams{
		MaxStepSize:   defaultMaxStepSize,
		MinDistance:   defaultMinDistance,
		ReactionTime:  defaultReactionTime,
		MaxCartAcc:    defaultMaxCartAcc,
		SelfDistance:  defaultSelfDistance,
		HumanVelocity: defaultHumanVelocity,
	}
}

// Validate returns every invalid parameter, combined.
func (p SafetyParams) Validate() error {
	var err error
	if !(p.MaxStepSize > 0) {
		err = multierr.Append(err, ErrInvalidStepSize)
	}
	multierr.AppendInto(&err, checkNonNegative("min_distance", p.MinDistance))
	multierr.AppendInto(&err, checkNonNegative("reaction_time", p.ReactionTime))
	if !(p.MaxCartAcc > 0) || !utils.IsFinite(p.MaxCartAcc) {
		multierr.AppendInto(&err, newInvalidParameterError("max_cart_acc", p.MaxCartAcc))
	}
	multierr.AppendInto(&err, checkNonNegative("self_distance", p.SelfDistance))
	multierr.AppendInto(&err, checkNonNegative("human_velocity", p.HumanVelocity))
	return err
}

func checkNonNegative(name string, value float64) error {
	if value < 0 || !utils.IsFinite(value) {
		return newInvalidParameterError(name, value)
	}
	return nil
}

// separationLaw caches the terms of the protective separation distance that only depend on the
// parameters. With reaction time Tr, deceleration a, human speed vh and keep-out radius C, a robot
// approaching at speed v needs
//
//	S(v) = vh*(Tr + v/a) + v*Tr + v^2/(2a) + C
//
// to stop in time. Solving S(v) = d for v gives the safe velocity at distance d.
type separationLaw struct {
	acc   float64
	term1 float64 // a*Tr + vh
	term2 float64 // term1^2 - 2a*(C + vh*Tr)
}

func newSeparationLaw(p SafetyParams) separationLaw {
	term1 := p.MaxCartAcc*p.ReactionTime + p.HumanVelocity
	return separationLaw{
		acc:   p.MaxCartAcc,
		term1: term1,
		term2: term1*term1 - 2*p.MaxCartAcc*(p.MinDistance+p.HumanVelocity*p.ReactionTime),
	}
}

// safeVelocity is the highest approach speed from which the robot can still stop before closing
// to the keep-out radius. It is never negative.
func (l separationLaw) safeVelocity(distance float64) float64 {
	return math.Max(0, -l.term1+math.Sqrt(math.Max(0, l.term2+2*l.acc*distance)))
}
