// Package config loads the configuration of the safety estimators and wires it into an estimator.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/utils"
)

// EstimatorConfig is the JSON configuration of an estimator. Fields left out keep their defaults.
type EstimatorConfig struct {
	// Configuration space distance between consecutive samples of a connection.
	MaxStepSize float64 `json:"max_step_size"`

	// Keep-out radius around obstacles, in meters.
	MinDistance float64 `json:"min_distance"`

	// Reaction time of the safety system, in seconds.
	ReactionTime float64 `json:"reaction_time"`

	// Maximum cartesian deceleration of the robot, in m/s^2.
	MaxCartAcc float64 `json:"max_cart_acc"`

	SelfDistance float64 `json:"self_distance"`

	// Speed at which a human may approach the robot, in m/s.
	HumanVelocity float64 `json:"human_velocity"`

	// Links checked against obstacles. Empty means every link of the chain.
	PoiNames []string `json:"poi_names,omitempty"`

	// Overrides the joint speeds of the kinematic model when set.
	MaxJointSpeeds []float64 `json:"max_joint_speeds,omitempty"`

	// Number of workers of the parallel estimator. Zero or less picks a value from the number of CPUs.
	NumThreads int `json:"n_threads"`

	Parallel bool `json:"parallel"`
}

// NewDefaultEstimatorConfig returns the configuration used when nothing is overridden.
func NewDefaultEstimatorConfig() *EstimatorConfig {
	p := ssm.DefaultSafetyParams()
	return &EstimatorConfig{
		MaxStepSize:   p.MaxStepSize,
		MinDistance:   p.MinDistance,
		ReactionTime:  p.ReactionTime,
		MaxCartAcc:    p.MaxCartAcc,
		SelfDistance:  p.SelfDistance,
		HumanVelocity: p.HumanVelocity,
		NumThreads:    utils.ParallelFactor,
	}
}

// ReadEstimatorConfig reads a JSON configuration on top of the defaults. Unknown fields are an error.
func ReadEstimatorConfig(data []byte) (*EstimatorConfig, error) {
	cfg := NewDefaultEstimatorConfig()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse estimator config")
	}
	return cfg, nil
}

// ReadEstimatorConfigFile is ReadEstimatorConfig on the content of a file.
func ReadEstimatorConfigFile(path string) (*EstimatorConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read estimator config")
	}
	return ReadEstimatorConfig(data)
}

// NewEstimatorConfigFromExtra returns the defaults updated by the parameters found in extra, keyed
// by their JSON names.
func NewEstimatorConfigFromExtra(extra map[string]interface{}) (*EstimatorConfig, error) {
	cfg := NewDefaultEstimatorConfig()
	if err := cfg.Merge(extra); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overrides the fields named in extra.
func (cfg *EstimatorConfig) Merge(extra map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(extra), "cannot decode estimator config")
}

// ApplyEnv applies the environment overrides, SSM_NUM_THREADS and SSM_HUMAN_VELOCITY.
func (cfg *EstimatorConfig) ApplyEnv() {
	cfg.NumThreads = utils.GetenvInt(utils.EnvNumThreads, cfg.NumThreads)
	cfg.HumanVelocity = utils.GetenvFloat(utils.EnvHumanVelocity, cfg.HumanVelocity)
}

// SafetyParams extracts the safety parameters.
func (cfg *EstimatorConfig) SafetyParams() ssm.SafetyParams {
	return ssm.SafetyParams{
		MaxStepSize:   cfg.MaxStepSize,
		MinDistance:   cfg.MinDistance,
		ReactionTime:  cfg.ReactionTime,
		MaxCartAcc:    cfg.MaxCartAcc,
		SelfDistance:  cfg.SelfDistance,
		HumanVelocity: cfg.HumanVelocity,
	}
}

// Validate checks the configuration on its own; poi names and joint speeds are checked against
// the chain by NewEstimator.
func (cfg *EstimatorConfig) Validate() error {
	err := cfg.SafetyParams().Validate()
	for i, s := range cfg.MaxJointSpeeds {
		if !(s > 0) {
			multierr.AppendInto(&err, errors.Wrapf(ssm.ErrNoMaxJointSpeeds, "max_joint_speeds[%d] is %v", i, s))
		}
	}
	return err
}

// NewEstimator builds the estimator described by cfg for chain.
func NewEstimator(chain referenceframe.KinematicChain, cfg *EstimatorConfig, logger logging.Logger) (ssm.Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	est, err := ssm.NewEstimator(chain, cfg.SafetyParams(), cfg.Parallel, cfg.NumThreads, logger)
	if err != nil {
		return nil, err
	}
	if len(cfg.PoiNames) > 0 {
		if err := est.SetPoiNames(cfg.PoiNames); err != nil {
			return nil, err
		}
	}
	if len(cfg.MaxJointSpeeds) > 0 {
		if err := est.SetMaxJointSpeeds(cfg.MaxJointSpeeds); err != nil {
			return nil, err
		}
	}
	return est, nil
}
