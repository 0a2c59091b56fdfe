package ssm

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/utils"
)

// ParallelEstimator spreads estimation work over a fixed pool of workers, each owning a clone of a
// SequentialEstimator. The samples of a single connection are split in contiguous chunks, one per
// worker; a batch of connections is split by connection. Calls are serialized, so a
// ParallelEstimator is safe for concurrent use.
type ParallelEstimator struct {
	mu      sync.Mutex
	logger  logging.Logger
	primary *SequentialEstimator
	workers []*SequentialEstimator
}

// NewParallelEstimator creates an estimator with nThreads workers. A non-positive nThreads uses
// utils.ParallelFactor.
func NewParallelEstimator(
	chain referenceframe.KinematicChain,
	params SafetyParams,
	nThreads int,
	logger logging.Logger,
) (*ParallelEstimator, error) {
	primary, err := NewSequentialEstimator(chain, params, logger)
	if err != nil {
		return nil, err
	}
	return newParallelFrom(primary, nThreads, logger), nil
}

func newParallelFrom(primary *SequentialEstimator, nThreads int, logger logging.Logger) *ParallelEstimator {
	if nThreads <= 0 {
		nThreads = utils.ParallelFactor
	}
	pe := &ParallelEstimator{logger: logger, primary: primary}
	for i := 0; i < nThreads; i++ {
		pe.workers = append(pe.workers, primary.clone(logger.Sublogger(fmt.Sprintf("worker_%d", i))))
	}
	logger.Debugf("parallel estimator with %d workers", nThreads)
	return pe
}

// NumWorkers is the size of the worker pool.
func (pe *ParallelEstimator) NumWorkers() int {
	return len(pe.workers)
}

// Estimate returns the mean scaling factor of the connection from q1 to q2. As soon as a worker
// finds an unsafe sample the others stop and the result is Unsafe.
func (pe *ParallelEstimator) Estimate(q1, q2 []referenceframe.Input) (float64, error) {
	pe.mu.Lock()
	defer pe.mu.Unlock()

	plan, err := pe.primary.planConnection(q1, q2)
	if err != nil {
		return 0, err
	}
	if pe.primary.obstacles.Len() == 0 {
		return 1, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unsafe := atomic.NewBool(false)
	partial := make([]float64, len(pe.workers))
	err = utils.GroupWorkParallel(ctx, len(pe.workers), plan.numSamples(),
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			worker := pe.workers[groupNum]
			q := make([]float64, len(plan.start))
			return func(memberNum, workNum int) error {
				report, err := worker.scalingAtSample(plan.sample(workNum, q), plan.dq)
				if err != nil {
					return err
				}
				if IsUnsafe(report.ScalingFactor) {
					unsafe.Store(true)
					cancel()
					return nil
				}
				partial[groupNum] += report.ScalingFactor
				return nil
			}, nil
		})
	if err != nil {
		return 0, err
	}
	if unsafe.Load() {
		return Unsafe, nil
	}
	return checkResult(floats.Sum(partial), plan.numSamples())
}

// EstimateBatch estimates every connection. Results are in the same order as conns; an unsafe
// connection does not affect the others. The first error cancels the batch.
func (pe *ParallelEstimator) EstimateBatch(ctx context.Context, conns []Connection) ([]float64, error) {
	ctx, span := trace.StartSpan(ctx, "ssm::EstimateBatch")
	defer span.End()

	pe.mu.Lock()
	defer pe.mu.Unlock()

	results := make([]float64, len(conns))
	if len(conns) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for w, worker := range pe.workers {
		if w >= len(conns) {
			break
		}
		g.Go(func() error {
			for i := w; i < len(conns); i += len(pe.workers) {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := worker.Estimate(conns[i].Start, conns[i].End)
				if err != nil {
					return errors.Wrapf(err, "connection %d", i)
				}
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Clone returns an independent ParallelEstimator with the same number of workers.
func (pe *ParallelEstimator) Clone() Estimator {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return newParallelFrom(pe.primary.clone(pe.logger), len(pe.workers), pe.logger)
}

// Params returns a copy of the safety parameters.
func (pe *ParallelEstimator) Params() SafetyParams {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.primary.Params()
}

// PoiNames returns the names of the links checked against obstacles.
func (pe *ParallelEstimator) PoiNames() []string {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.primary.PoiNames()
}

// Obstacles returns the current obstacle snapshot.
func (pe *ParallelEstimator) Obstacles() *ObstacleSet {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.primary.Obstacles()
}

// broadcast applies set to the primary estimator first, so that an invalid value is rejected
// before any worker changes, then to every worker.
func (pe *ParallelEstimator) broadcast(set func(*SequentialEstimator) error) error {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	if err := set(pe.primary); err != nil {
		return err
	}
	for _, worker := range pe.workers {
		if err := set(worker); err != nil {
			return err
		}
	}
	return nil
}

// SetMaxStepSize sets the sampling resolution on every worker.
func (pe *ParallelEstimator) SetMaxStepSize(stepSize float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetMaxStepSize(stepSize) })
}

// SetMinDistance sets the keep-out radius on every worker.
func (pe *ParallelEstimator) SetMinDistance(distance float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetMinDistance(distance) })
}

// SetReactionTime sets the reaction time on every worker.
func (pe *ParallelEstimator) SetReactionTime(reactionTime float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetReactionTime(reactionTime) })
}

// SetMaxCartAcc sets the maximum cartesian deceleration on every worker.
func (pe *ParallelEstimator) SetMaxCartAcc(acc float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetMaxCartAcc(acc) })
}

// SetSelfDistance sets the self distance on every worker.
func (pe *ParallelEstimator) SetSelfDistance(distance float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetSelfDistance(distance) })
}

// SetHumanVelocity sets the human approach speed on every worker.
func (pe *ParallelEstimator) SetHumanVelocity(velocity float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetHumanVelocity(velocity) })
}

// SetPoiNames selects the pois on every worker.
func (pe *ParallelEstimator) SetPoiNames(names []string) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetPoiNames(names) })
}

// SetMaxJointSpeeds overrides the joint speeds on every worker.
func (pe *ParallelEstimator) SetMaxJointSpeeds(speeds []float64) error {
	return pe.broadcast(func(se *SequentialEstimator) error { return se.SetMaxJointSpeeds(speeds) })
}

// SetObstacles installs one obstacle snapshot, shared read-only by every worker.
func (pe *ParallelEstimator) SetObstacles(points []r3.Vector) {
	snapshot := NewObstacleSet(points)
	//nolint:errcheck
	pe.broadcast(func(se *SequentialEstimator) error {
		se.obstacles = snapshot
		se.updateMembers()
		return nil
	})
}
