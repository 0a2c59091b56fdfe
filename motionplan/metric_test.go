package motionplan

import (
	"context"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

func newTestEstimator(t *testing.T, parallel bool) ssm.Estimator {
	t.Helper()
	chain, err := referenceframe.ParseURDFFile("../referenceframe/testdata/planar2r.urdf", "")
	test.That(t, err, test.ShouldBeNil)
	est, err := ssm.NewEstimator(chain, ssm.DefaultSafetyParams(), parallel, 3, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return est
}

func TestLengthPenaltyCost(t *testing.T) {
	est := newTestEstimator(t, false)
	metric := NewLengthPenaltyMetric(est)
	test.That(t, metric.Estimator(), test.ShouldEqual, est)

	q1 := []referenceframe.Input{0, 0}
	q2 := []referenceframe.Input{0.3, 0.4}

	// no obstacles: the cost is the length
	cost, err := metric.Cost(q1, q2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldAlmostEqual, 0.5)
	test.That(t, metric.Utopia(q1, q2), test.ShouldAlmostEqual, 0.5)

	cost, err = metric.Cost(q1, q1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldEqual, 0)

	est.SetObstacles([]r3.Vector{{X: 2.5, Y: 1.5}})
	lambda, err := est.Estimate(q1, q2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ssm.IsUnsafe(lambda), test.ShouldBeFalse)
	test.That(t, lambda, test.ShouldBeGreaterThan, 1)
	cost, err = metric.Cost(q1, q2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldAlmostEqual, 0.5*lambda)

	// an obstacle on the tool's path
	est.SetObstacles([]r3.Vector{{X: 2}})
	cost, err = metric.Cost(q2, q1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldAlmostEqual, 0.5*LambdaPenalty)

	_, err = metric.Cost(q1, []referenceframe.Input{1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUtopiaIsAdmissible(t *testing.T) {
	est := newTestEstimator(t, false)
	est.SetObstacles([]r3.Vector{{X: 1.2, Y: 0.9}, {X: -0.5, Y: 1.5}, {X: 0.3, Y: -1.7}})
	metric := NewLengthPenaltyMetric(est)

	//nolint:gosec
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		q1 := []referenceframe.Input{rnd.Float64()*6 - 3, rnd.Float64()*6 - 3}
		q2 := []referenceframe.Input{rnd.Float64()*6 - 3, rnd.Float64()*6 - 3}
		cost, err := metric.Cost(q1, q2)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, metric.Utopia(q1, q2), test.ShouldBeLessThanOrEqualTo, cost)
		test.That(t, cost, test.ShouldBeLessThan, 1e14)

		self, err := metric.Cost(q1, q1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, self, test.ShouldEqual, 0)
	}
}

func TestMetricClone(t *testing.T) {
	est := newTestEstimator(t, false)
	est.SetObstacles([]r3.Vector{{X: 2.5, Y: 1.5}})
	metric := NewLengthPenaltyMetric(est)
	q1 := []referenceframe.Input{0, 0}
	q2 := []referenceframe.Input{0.3, 0.4}

	before, err := metric.Cost(q1, q2)
	test.That(t, err, test.ShouldBeNil)

	clone := metric.Clone().(*LengthPenaltyMetric)
	test.That(t, clone.Estimator(), test.ShouldNotEqual, est)
	clone.Estimator().SetObstacles(nil)

	after, err := metric.Cost(q1, q2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, after, test.ShouldEqual, before)

	cloned, err := clone.Cost(q1, q2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cloned, test.ShouldAlmostEqual, 0.5)
}

func TestCostBatch(t *testing.T) {
	conns := []ssm.Connection{
		{Start: []referenceframe.Input{0, 0}, End: []referenceframe.Input{0.3, 0.4}},
		{Start: []referenceframe.Input{0.1, 0.1}, End: []referenceframe.Input{0.1, 0.1}},
		{Start: []referenceframe.Input{0.3, 0.4}, End: []referenceframe.Input{0, 0}},
		{Start: []referenceframe.Input{-1, 2}, End: []referenceframe.Input{1, -2}},
	}
	obstacles := []r3.Vector{{X: 2}}

	for _, parallel := range []bool{false, true} {
		est := newTestEstimator(t, parallel)
		est.SetObstacles(obstacles)
		metric := NewLengthPenaltyMetric(est)

		costs, err := metric.CostBatch(context.Background(), conns)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, costs, test.ShouldHaveLength, len(conns))
		test.That(t, costs[1], test.ShouldEqual, 0)
		for i, c := range conns {
			single, err := metric.Cost(c.Start, c.End)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, costs[i], test.ShouldAlmostEqual, single, 1e-9)
		}
	}
}

// fixedEstimator returns the same scaling factor for every connection.
type fixedEstimator struct {
	ssm.Estimator
	lambda float64
}

func (fe *fixedEstimator) Estimate(q1, q2 []referenceframe.Input) (float64, error) {
	return fe.lambda, nil
}

func TestEvaluateBatch(t *testing.T) {
	q1 := []referenceframe.Input{0, 0}
	q2 := []referenceframe.Input{0.3, 0.4}
	conns := []ssm.Connection{{Start: q1, End: q2}, {Start: q1, End: q1}}

	t.Run("finite scaling above the penalty", func(t *testing.T) {
		metric := NewLengthPenaltyMetric(&fixedEstimator{lambda: 1e13})
		evals, err := metric.EvaluateBatch(context.Background(), conns)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, evals[0].Unsafe(), test.ShouldBeFalse)
		test.That(t, evals[0].Lambda, test.ShouldEqual, 1e13)
		test.That(t, evals[0].Cost, test.ShouldAlmostEqual, 0.5e13)
		test.That(t, evals[1], test.ShouldResemble, Evaluation{Lambda: 1})
	})

	t.Run("unsafe", func(t *testing.T) {
		metric := NewLengthPenaltyMetric(&fixedEstimator{lambda: ssm.Unsafe})
		evals, err := metric.EvaluateBatch(context.Background(), conns)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, evals[0].Unsafe(), test.ShouldBeTrue)
		test.That(t, evals[0].Length, test.ShouldAlmostEqual, 0.5)
		test.That(t, evals[0].Cost, test.ShouldAlmostEqual, 0.5*LambdaPenalty)
		test.That(t, evals[1].Unsafe(), test.ShouldBeFalse)
	})

	for _, parallel := range []bool{false, true} {
		est := newTestEstimator(t, parallel)
		est.SetObstacles([]r3.Vector{{X: 2}})
		metric := NewLengthPenaltyMetric(est)
		evals, err := metric.EvaluateBatch(context.Background(), []ssm.Connection{{Start: q2, End: q1}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, evals[0].Unsafe(), test.ShouldBeTrue)
		test.That(t, evals[0].Cost, test.ShouldAlmostEqual, 0.5*LambdaPenalty)
	}
}

func TestPenalty(t *testing.T) {
	test.That(t, penalty(ssm.Unsafe), test.ShouldEqual, LambdaPenalty)
	test.That(t, penalty(0.5), test.ShouldEqual, 1)
	test.That(t, penalty(2.5), test.ShouldEqual, 2.5)
}
