// Package ssm estimates how much a robot is slowed down by speed and separation monitoring
// (ISO/TS 15066) while it travels along a configuration space connection near obstacles.
package ssm

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// Unsafe is the scaling factor of a connection that must not be traversed: at some sample an
// obstacle is inside the keep-out radius, or the robot cannot stop in time at any speed.
var Unsafe = math.Inf(1)

// IsUnsafe reports whether a scaling factor is the Unsafe sentinel.
func IsUnsafe(scaling float64) bool {
	return math.IsInf(scaling, 1)
}

// Connection is a straight segment in configuration space.
type Connection struct {
	Start []referenceframe.Input
	End   []referenceframe.Input
}

// An Estimator computes the mean scaling factor of a connection: 1 when the robot can travel at
// full speed, more when it has to slow down, Unsafe when it cannot travel at all. An Estimator is
// not safe for concurrent use unless stated otherwise; Clone gives an independent copy.
type Estimator interface {
	Estimate(q1, q2 []referenceframe.Input) (float64, error)
	Clone() Estimator

	Params() SafetyParams
	PoiNames() []string
	Obstacles() *ObstacleSet

	SetMaxStepSize(float64) error
	SetMinDistance(float64) error
	SetReactionTime(float64) error
	SetMaxCartAcc(float64) error
	SetSelfDistance(float64) error
	SetHumanVelocity(float64) error
	SetPoiNames([]string) error
	SetMaxJointSpeeds([]float64) error
	SetObstacles([]r3.Vector)
}

// SampleReport describes the pair of obstacle and poi that dominates the scaling factor at one
// configuration.
type SampleReport struct {
	ScalingFactor   float64
	TangentialSpeed float64
	Distance        float64
	SafeVelocity    float64
	PoiName         string
	PoiPosition     r3.Vector
	Obstacle        int
}

func newSampleReport() SampleReport {
	return SampleReport{
		ScalingFactor: 1,
		Distance:      math.Inf(1),
		SafeVelocity:  math.Inf(1),
		Obstacle:      -1,
	}
}
