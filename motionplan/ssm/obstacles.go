package ssm

import (
	"github.com/golang/geo/r3"
	"github.com/samber/lo"
)

// ObstacleSet is an immutable snapshot of obstacle positions, in the base frame of the chain.
// Replacing the obstacles of an estimator installs a new snapshot; in-flight estimates keep
// reading the one they started with.
type ObstacleSet struct {
	points []r3.Vector
}

// NewObstacleSet copies points into a new snapshot.
func NewObstacleSet(points []r3.Vector) *ObstacleSet {
	return &ObstacleSet{points: append([]r3.Vector{}, points...)}
}

// Len is the number of obstacles.
func (o *ObstacleSet) Len() int {
	if o == nil {
		return 0
	}
	return len(o.points)
}

// At returns the position of obstacle i.
func (o *ObstacleSet) At(i int) r3.Vector {
	return o.points[i]
}

// Points returns a copy of all obstacle positions.
func (o *ObstacleSet) Points() []r3.Vector {
	if o == nil {
		return nil
	}
	return append([]r3.Vector{}, o.points...)
}

// Exclude returns a new snapshot without the obstacles closer than radius to any of the given
// points. It is used to drop detections of the robot itself, with radius the self distance.
func (o *ObstacleSet) Exclude(points []r3.Vector, radius float64) *ObstacleSet {
	if o == nil || radius <= 0 {
		return NewObstacleSet(o.Points())
	}
	return &ObstacleSet{points: lo.Filter(o.points, func(obs r3.Vector, _ int) bool {
		return !lo.SomeBy(points, func(p r3.Vector) bool { return obs.Sub(p).Norm() < radius })
	})}
}
