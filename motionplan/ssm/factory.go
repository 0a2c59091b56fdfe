package ssm

import (
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// NewEstimator returns a SequentialEstimator when parallel is false or a single thread is asked
// for, and a ParallelEstimator otherwise.
func NewEstimator(
	chain referenceframe.KinematicChain,
	params SafetyParams,
	parallel bool,
	nThreads int,
	logger logging.Logger,
) (Estimator, error) {
	if !parallel || nThreads == 1 {
		se, err := NewSequentialEstimator(chain, params, logger)
		if err != nil {
			return nil, err
		}
		return se, nil
	}
	pe, err := NewParallelEstimator(chain, params, nThreads, logger)
	if err != nil {
		return nil, err
	}
	return pe, nil
}
