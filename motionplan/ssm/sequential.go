package ssm

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/utils"
)

const (
	directionTolerance = 1e-8
	endpointTolerance  = 1e-3
)

// SequentialEstimator evaluates the samples of a connection one after the other on a single
// kinematic chain.
type SequentialEstimator struct {
	logger logging.Logger
	chain  referenceframe.KinematicChain

	params      SafetyParams
	law         separationLaw
	obstacles   *ObstacleSet
	poiNames    []string
	poiIdx      []int
	invMaxSpeed []float64
}

// NewSequentialEstimator binds an estimator to chain. All links of the chain are pois and the
// chain's own joint speeds are used until configured otherwise.
func NewSequentialEstimator(chain referenceframe.KinematicChain, params SafetyParams, logger logging.Logger) (*SequentialEstimator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	se := &SequentialEstimator{
		logger:    logger,
		chain:     chain,
		params:    params,
		obstacles: NewObstacleSet(nil),
	}
	if err := se.SetMaxJointSpeeds(chain.MaxSpeeds()); err != nil {
		return nil, err
	}
	if err := se.SetPoiNames(chain.LinkNames()); err != nil {
		return nil, err
	}
	se.updateMembers()
	return se, nil
}

// updateMembers recomputes the terms derived from the parameters. Every setter calls it.
func (se *SequentialEstimator) updateMembers() {
	se.law = newSeparationLaw(se.params)
}

// Params returns a copy of the safety parameters.
func (se *SequentialEstimator) Params() SafetyParams {
	return se.params
}

// PoiNames returns the names of the links checked against obstacles.
func (se *SequentialEstimator) PoiNames() []string {
	return append([]string{}, se.poiNames...)
}

// Obstacles returns the current obstacle snapshot.
func (se *SequentialEstimator) Obstacles() *ObstacleSet {
	return se.obstacles
}

// Chain returns the kinematic chain owned by this estimator.
func (se *SequentialEstimator) Chain() referenceframe.KinematicChain {
	return se.chain
}

// SetMaxStepSize sets the sampling resolution of connections.
func (se *SequentialEstimator) SetMaxStepSize(stepSize float64) error {
	if !(stepSize > 0) {
		return errors.Wrapf(ErrInvalidStepSize, "got %v", stepSize)
	}
	se.params.MaxStepSize = stepSize
	se.updateMembers()
	return nil
}

// SetMinDistance sets the keep-out radius.
func (se *SequentialEstimator) SetMinDistance(distance float64) error {
	return se.setParam(func(p *SafetyParams) { p.MinDistance = distance })
}

// SetReactionTime sets the reaction time of the safety system.
func (se *SequentialEstimator) SetReactionTime(reactionTime float64) error {
	return se.setParam(func(p *SafetyParams) { p.ReactionTime = reactionTime })
}

// SetMaxCartAcc sets the maximum cartesian deceleration.
func (se *SequentialEstimator) SetMaxCartAcc(acc float64) error {
	return se.setParam(func(p *SafetyParams) { p.MaxCartAcc = acc })
}

// SetSelfDistance sets the radius used to recognize the robot among the obstacles.
func (se *SequentialEstimator) SetSelfDistance(distance float64) error {
	return se.setParam(func(p *SafetyParams) { p.SelfDistance = distance })
}

// SetHumanVelocity sets the speed at which obstacles may approach the robot.
func (se *SequentialEstimator) SetHumanVelocity(velocity float64) error {
	return se.setParam(func(p *SafetyParams) { p.HumanVelocity = velocity })
}

func (se *SequentialEstimator) setParam(set func(*SafetyParams)) error {
	params := se.params
	set(&params)
	if err := params.Validate(); err != nil {
		return err
	}
	se.params = params
	se.updateMembers()
	return nil
}

// SetPoiNames selects which links are checked against obstacles. Every name must be a link of the chain.
func (se *SequentialEstimator) SetPoiNames(names []string) error {
	links := se.chain.LinkNames()
	if unknown, _ := lo.Difference(names, links); len(unknown) > 0 {
		return errors.Wrapf(ErrUnknownPoi, "%v not in %v", unknown, links)
	}
	// keep the chain order so that pois line up with poses and twists
	se.poiIdx = se.poiIdx[:0]
	for i, link := range links {
		if lo.Contains(names, link) {
			se.poiIdx = append(se.poiIdx, i)
		}
	}
	se.poiNames = append([]string{}, names...)
	se.updateMembers()
	return nil
}

// SetMaxJointSpeeds overrides the joint speeds used to time connections.
func (se *SequentialEstimator) SetMaxJointSpeeds(speeds []float64) error {
	if len(speeds) != se.chain.DoF() {
		return errors.Wrap(ErrNoMaxJointSpeeds, referenceframe.NewIncorrectDoFError(len(speeds), se.chain.DoF()).Error())
	}
	inv := make([]float64, len(speeds))
	for i, s := range speeds {
		if !(s > 0) || !utils.IsFinite(s) {
			return errors.Wrapf(ErrNoMaxJointSpeeds, "joint %d has max speed %v", i, s)
		}
		inv[i] = 1 / s
	}
	se.invMaxSpeed = inv
	se.updateMembers()
	return nil
}

// SetObstacles replaces the obstacle snapshot.
func (se *SequentialEstimator) SetObstacles(points []r3.Vector) {
	se.obstacles = NewObstacleSet(points)
	se.updateMembers()
}

// Clone returns an independent estimator with its own copy of the chain, parameters and obstacles.
func (se *SequentialEstimator) Clone() Estimator {
	return se.clone(se.logger)
}

func (se *SequentialEstimator) clone(logger logging.Logger) *SequentialEstimator {
	clone := &SequentialEstimator{
		logger:      logger,
		chain:       se.chain.Clone(),
		params:      se.params,
		obstacles:   se.obstacles,
		poiNames:    append([]string{}, se.poiNames...),
		poiIdx:      append([]int{}, se.poiIdx...),
		invMaxSpeed: append([]float64{}, se.invMaxSpeed...),
	}
	clone.updateMembers()
	return clone
}

// connectionPlan is the timing and sampling of one connection.
type connectionPlan struct {
	start []float64
	delta []float64 // d/n
	dq    []float64
	n     int
}

// sample writes q_i = start + i*delta into dst and returns it.
func (cp *connectionPlan) sample(i int, dst []float64) []float64 {
	return floats.AddScaledTo(dst, cp.start, float64(i), cp.delta)
}

// checkEndpoint fails when the last sample strays from q2.
func (cp *connectionPlan) checkEndpoint(q2 []float64) error {
	if drift := floats.Distance(cp.sample(cp.n, make([]float64, len(cp.start))), q2, 2); !(drift < endpointTolerance) {
		return errors.Wrapf(ErrEndpointDrift, "error %v with %d samples", drift, cp.n)
	}
	return nil
}

// numSamples is n+1, both endpoints included.
func (cp *connectionPlan) numSamples() int {
	return cp.n + 1
}

// planConnection checks the connection and computes its timing and sampling. The slowest joint
// governs the traversal time, every joint moves at constant speed.
func (se *SequentialEstimator) planConnection(q1, q2 []referenceframe.Input) (*connectionPlan, error) {
	dof := se.chain.DoF()
	if len(q1) != dof {
		return nil, referenceframe.NewIncorrectDoFError(len(q1), dof)
	}
	if len(q2) != dof {
		return nil, referenceframe.NewIncorrectDoFError(len(q2), dof)
	}
	if !(se.params.MaxStepSize > 0) {
		return nil, ErrInvalidStepSize
	}
	connection := referenceframe.InputsDelta(q1, q2)
	length := floats.Norm(connection, 2)
	if length == 0 {
		return nil, ErrZeroLengthConnection
	}

	times := make([]float64, dof)
	floats.MulTo(times, se.invMaxSpeed, connection)
	slowestJointTime := math.Max(floats.Max(times), -floats.Min(times))

	dq := make([]float64, dof)
	floats.ScaleTo(dq, 1/slowestJointTime, connection)
	if err := checkDirection(connection, dq); err != nil {
		return nil, errors.Wrapf(err, "q1 %v q2 %v inverse max speeds %v", q1, q2, se.invMaxSpeed)
	}

	n := int(math.Max(math.Ceil(length/se.params.MaxStepSize), 1))
	delta := make([]float64, dof)
	floats.ScaleTo(delta, 1/float64(n), connection)

	plan := &connectionPlan{start: referenceframe.InputsToFloats(q1), delta: delta, dq: dq, n: n}
	if err := plan.checkEndpoint(q2); err != nil {
		return nil, err
	}
	return plan, nil
}

func checkDirection(connection, dq []float64) error {
	qv := make([]float64, len(connection))
	dqv := make([]float64, len(dq))
	floats.ScaleTo(qv, 1/floats.Norm(connection, 2), connection)
	floats.ScaleTo(dqv, 1/floats.Norm(dq, 2), dq)
	if err := floats.Distance(qv, dqv, 2); !(err < directionTolerance) {
		return errors.Wrapf(ErrDirectionMismatch, "error %v", err)
	}
	return nil
}

// Estimate returns the mean scaling factor over the samples of the connection from q1 to q2.
func (se *SequentialEstimator) Estimate(q1, q2 []referenceframe.Input) (float64, error) {
	plan, err := se.planConnection(q1, q2)
	if err != nil {
		return 0, err
	}
	if se.obstacles.Len() == 0 {
		return 1, nil
	}
	se.logger.Debugw("estimating scaling factor",
		"obstacles", se.obstacles.Len(), "pois", len(se.poiIdx), "samples", plan.numSamples(), "joint_speed", floats.Norm(plan.dq, 2))

	sum, err := se.sumSamples(plan, 0, plan.numSamples(), nil)
	if err != nil || IsUnsafe(sum) {
		return sum, err
	}
	return checkResult(sum, plan.numSamples())
}

func checkResult(sum float64, numSamples int) (float64, error) {
	res := sum / float64(numSamples)
	if !(res >= 1) {
		return 0, errors.Wrapf(ErrScalingBelowOne, "scaling %v sum %v over %d samples", res, sum, numSamples)
	}
	return res, nil
}

// sumSamples adds up the per-sample maxima of samples [from, to). It returns Unsafe as soon as one
// sample is unsafe, and stops early, returning zero, once stop reports true.
func (se *SequentialEstimator) sumSamples(plan *connectionPlan, from, to int, stop func() bool) (float64, error) {
	q := make([]float64, len(plan.start))
	verbose := se.logger.GetLevel() == logging.DEBUG
	sum := 0.
	for i := from; i < to; i++ {
		if stop != nil && stop() {
			return 0, nil
		}
		report, err := se.scalingAtSample(plan.sample(i, q), plan.dq)
		if err != nil {
			return 0, err
		}
		if IsUnsafe(report.ScalingFactor) {
			return Unsafe, nil
		}
		if verbose {
			se.logger.Debugw("sample", "q", q, "scaling_factor", report.ScalingFactor)
		}
		sum += report.ScalingFactor
	}
	return sum, nil
}

// ScalingFactorAtQ returns the scaling factor at configuration q for joint velocity dq, and the
// pair of obstacle and poi that dominates it.
func (se *SequentialEstimator) ScalingFactorAtQ(q, dq []referenceframe.Input) (SampleReport, error) {
	dof := se.chain.DoF()
	if len(q) != dof {
		return SampleReport{}, referenceframe.NewIncorrectDoFError(len(q), dof)
	}
	if len(dq) != dof {
		return SampleReport{}, referenceframe.NewIncorrectDoFError(len(dq), dof)
	}
	return se.scalingAtSample(q, dq)
}

// Sample is one configuration of a connection with the report of its dominating pair.
type Sample struct {
	Q  []referenceframe.Input
	Dq []referenceframe.Input
	SampleReport
}

// Samples returns every sample of the connection from q1 to q2, endpoints included. Unlike
// Estimate it keeps going past unsafe samples.
func (se *SequentialEstimator) Samples(q1, q2 []referenceframe.Input) ([]Sample, error) {
	plan, err := se.planConnection(q1, q2)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, plan.numSamples())
	for i := 0; i < plan.numSamples(); i++ {
		q := plan.sample(i, make([]float64, len(plan.start)))
		report, err := se.scalingAtSample(q, plan.dq)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		samples = append(samples, Sample{Q: q, Dq: append([]float64{}, plan.dq...), SampleReport: report})
	}
	return samples, nil
}

// scalingAtSample is the largest local scaling factor over all pairs of obstacle and poi.
func (se *SequentialEstimator) scalingAtSample(q, dq []float64) (SampleReport, error) {
	report := newSampleReport()
	if se.obstacles.Len() == 0 || len(se.poiIdx) == 0 {
		return report, nil
	}

	poses, err := se.chain.Poses(q)
	if err != nil {
		return report, err
	}
	twists, err := se.chain.Twists(q, dq)
	if err != nil {
		return report, err
	}
	links := se.chain.LinkNames()
	verbose := se.logger.GetLevel() == logging.DEBUG

	for iObs := 0; iObs < se.obstacles.Len(); iObs++ {
		obstacle := se.obstacles.At(iObs)
		for _, iPoi := range se.poiIdx {
			poi := poses[iPoi].Point()
			tangentialSpeed, distance := twists[iPoi].SpeedToward(poi, obstacle)

			scaling := 1.
			safeVelocity := math.Inf(1)
			switch {
			case tangentialSpeed <= 0:
				// going away
			case distance > se.params.MinDistance:
				safeVelocity = se.law.safeVelocity(distance)
				if safeVelocity == 0 {
					scaling = Unsafe
				} else {
					scaling = tangentialSpeed / safeVelocity
				}
			default:
				scaling = Unsafe
			}
			if verbose {
				se.logger.Debugw("pair", "obstacle", iObs, "poi", links[iPoi],
					"distance", distance, "tangential_speed", tangentialSpeed, "v_safety", safeVelocity, "scaling_factor", scaling)
			}

			if scaling > report.ScalingFactor || IsUnsafe(scaling) {
				report = SampleReport{
					ScalingFactor:   scaling,
					TangentialSpeed: tangentialSpeed,
					Distance:        distance,
					SafeVelocity:    safeVelocity,
					PoiName:         links[iPoi],
					PoiPosition:     poi,
					Obstacle:        iObs,
				}
			}
			if IsUnsafe(scaling) {
				return report, nil
			}
		}
	}
	return report, nil
}
