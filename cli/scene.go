package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/config"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// scene is everything a command needs to evaluate connections.
type scene struct {
	logger      logging.Logger
	chain       *referenceframe.SerialChain
	cfg         *config.EstimatorConfig
	estimator   ssm.Estimator
	obstacles   []r3.Vector
	connections []ssm.Connection
}

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("ssm-cost")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.INFO)
	}
	logging.ReplaceGlobal(logger)
	return logger
}

func loadChain(c *cli.Context) (*referenceframe.SerialChain, error) {
	chain, err := config.ReadChainFile(c.String(sceneFlagModel), c.String(sceneFlagModelName))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load kinematic model")
	}
	return chain, nil
}

// loadScene reads the model, configuration, obstacles and connections named by the flags. With
// sequential set the parallel estimator is never used.
func loadScene(c *cli.Context, sequential bool) (*scene, error) {
	logger := newLogger(c)
	chain, err := loadChain(c)
	if err != nil {
		return nil, err
	}

	cfg := config.NewDefaultEstimatorConfig()
	if path := c.String(sceneFlagConfig); path != "" {
		if cfg, err = config.ReadEstimatorConfigFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if c.IsSet(sceneFlagThreads) {
		cfg.NumThreads = c.Int(sceneFlagThreads)
		cfg.Parallel = true
	}
	if pois := c.StringSlice(sceneFlagPoi); len(pois) > 0 {
		cfg.PoiNames = pois
	}
	if sequential {
		cfg.Parallel = false
	}

	var obstacles []r3.Vector
	if path := c.String(sceneFlagObstacles); path != "" {
		if obstacles, err = config.ReadObstaclesFile(path); err != nil {
			return nil, err
		}
	}
	conns, err := config.ReadConnectionsFile(c.String(sceneFlagConnections))
	if err != nil {
		return nil, err
	}

	est, err := config.NewEstimator(chain, cfg, logger)
	if err != nil {
		return nil, err
	}
	s := &scene{
		logger:      logger,
		chain:       chain,
		cfg:         cfg,
		estimator:   est,
		obstacles:   obstacles,
		connections: conns,
	}
	if err := s.updateObstacles(); err != nil {
		return nil, err
	}
	return s, nil
}

// updateObstacles hands the obstacles to the estimator, leaving out the ones within self_distance
// of a link at the start of the first connection: those are the robot seen by its own sensors.
func (s *scene) updateObstacles() error {
	obstacles := ssm.NewObstacleSet(s.obstacles)
	if s.cfg.SelfDistance > 0 && len(s.connections) > 0 {
		poses, err := s.chain.Poses(s.connections[0].Start)
		if err != nil {
			return errors.Wrap(err, "cannot place the robot at the start of the first connection")
		}
		links := make([]r3.Vector, 0, len(poses))
		for _, p := range poses {
			links = append(links, p.Point())
		}
		obstacles = obstacles.Exclude(links, s.cfg.SelfDistance)
		if dropped := len(s.obstacles) - obstacles.Len(); dropped > 0 {
			s.logger.Infof("ignoring %d obstacles within %v of the robot", dropped, s.cfg.SelfDistance)
		}
	}
	s.estimator.SetObstacles(obstacles.Points())
	return nil
}

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func formatInputs(q []referenceframe.Input) string {
	s := make([]string, 0, len(q))
	for _, v := range q {
		s = append(s, fmt.Sprintf("%.4g", v))
	}
	return "[" + strings.Join(s, " ") + "]"
}
