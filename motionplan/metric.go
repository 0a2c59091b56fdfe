// Package motionplan contains the cost functions used by sampling based planners to score
// connections between configurations.
package motionplan

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// LambdaPenalty is the scaling factor charged for an unsafe connection. Planners accumulate and
// sort costs, so an unsafe connection gets a large finite cost instead of +Inf.
const LambdaPenalty = 1e12

// Metric scores connections for a planner. Cost is never lower than Utopia.
type Metric interface {
	Cost(q1, q2 []referenceframe.Input) (float64, error)
	Utopia(q1, q2 []referenceframe.Input) float64
	Clone() Metric
}

// LengthPenaltyMetric is the length of a connection, scaled by how much speed and separation
// monitoring would slow the robot down along it:
//
//	c(q1, q2) = ||q2 - q1|| * lambda
//
// where lambda is the mean scaling factor estimated by an ssm.Estimator.
type LengthPenaltyMetric struct {
	estimator ssm.Estimator
}

// NewLengthPenaltyMetric returns a metric bound to estimator.
func NewLengthPenaltyMetric(estimator ssm.Estimator) *LengthPenaltyMetric {
	return &LengthPenaltyMetric{estimator: estimator}
}

// Estimator returns the estimator the metric is bound to.
func (m *LengthPenaltyMetric) Estimator() ssm.Estimator {
	return m.estimator
}

// Cost returns zero for q1 == q2, otherwise the length of the connection times its scaling factor.
func (m *LengthPenaltyMetric) Cost(q1, q2 []referenceframe.Input) (float64, error) {
	length := referenceframe.InputsL2Distance(q1, q2)
	if length == 0 {
		return 0, nil
	}
	lambda, err := m.estimator.Estimate(q1, q2)
	if err != nil {
		return 0, err
	}
	return length * penalty(lambda), nil
}

// Evaluation is the score of one connection. Lambda is the scaling factor as the estimator
// returned it, ssm.Unsafe included, and Cost is Length times its penalty.
type Evaluation struct {
	Length float64
	Lambda float64
	Cost   float64
}

// CostBatch scores every connection. When the estimator is a ssm.ParallelEstimator the connections
// are spread over its workers.
func (m *LengthPenaltyMetric) CostBatch(ctx context.Context, conns []ssm.Connection) ([]float64, error) {
	evals, err := m.EvaluateBatch(ctx, conns)
	if err != nil {
		return nil, err
	}
	costs := make([]float64, len(evals))
	for i, e := range evals {
		costs[i] = e.Cost
	}
	return costs, nil
}

// EvaluateBatch is CostBatch keeping the scaling factor of every connection. Zero length
// connections are not estimated and get a Lambda of 1.
func (m *LengthPenaltyMetric) EvaluateBatch(ctx context.Context, conns []ssm.Connection) ([]Evaluation, error) {
	ctx, span := trace.StartSpan(ctx, "motionplan::EvaluateBatch")
	defer span.End()

	evals := make([]Evaluation, len(conns))
	moving := make([]int, 0, len(conns))
	for i, c := range conns {
		evals[i] = Evaluation{Length: referenceframe.InputsL2Distance(c.Start, c.End), Lambda: 1}
		if evals[i].Length != 0 {
			moving = append(moving, i)
		}
	}

	pe, ok := m.estimator.(*ssm.ParallelEstimator)
	if !ok {
		for _, i := range moving {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lambda, err := m.estimator.Estimate(conns[i].Start, conns[i].End)
			if err != nil {
				return nil, err
			}
			evals[i].setLambda(lambda)
		}
		return evals, nil
	}

	batch := make([]ssm.Connection, 0, len(moving))
	for _, i := range moving {
		batch = append(batch, conns[i])
	}
	lambdas, err := pe.EstimateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	for j, i := range moving {
		evals[i].setLambda(lambdas[j])
	}
	return evals, nil
}

func (e *Evaluation) setLambda(lambda float64) {
	e.Lambda = lambda
	e.Cost = e.Length * penalty(lambda)
}

// Unsafe reports whether the connection crosses a keep-out radius.
func (e Evaluation) Unsafe() bool {
	return ssm.IsUnsafe(e.Lambda)
}

// Utopia is the length of the connection, a lower bound of Cost.
func (m *LengthPenaltyMetric) Utopia(q1, q2 []referenceframe.Input) float64 {
	return referenceframe.InputsL2Distance(q1, q2)
}

// Clone returns a metric bound to a clone of the estimator.
func (m *LengthPenaltyMetric) Clone() Metric {
	return NewLengthPenaltyMetric(m.estimator.Clone())
}

// penalty converts a scaling factor into the factor applied to the length. It is the only place
// where ssm.Unsafe is turned into LambdaPenalty.
func penalty(lambda float64) float64 {
	if ssm.IsUnsafe(lambda) {
		return LambdaPenalty
	}
	if lambda < 1 {
		return 1
	}
	return lambda
}
