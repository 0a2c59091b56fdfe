// Package cli contains the ssm-cost command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagDebug       = "debug"
	sceneFlagModel         = "model"
	sceneFlagModelName     = "model-name"
	sceneFlagConfig        = "config"
	sceneFlagObstacles     = "obstacles"
	sceneFlagConnections   = "connections"
	sceneFlagThreads       = "threads"
	sceneFlagPoi           = "poi"
	datasetFlagOutput      = "output"
	chainFlagConfiguration = "q"
)

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     sceneFlagModel,
			Aliases:  []string{"m"},
			Required: true,
			Usage:    "kinematic model of the robot, a `FILE` ending in .urdf or .json",
		},
		&cli.StringFlag{
			Name:  sceneFlagModelName,
			Usage: "name of the kinematic chain, defaults to the one in the model file",
		},
	}
}

func sceneFlags() []cli.Flag {
	return append(modelFlags(),
		&cli.StringFlag{
			Name:    sceneFlagConfig,
			Aliases: []string{"c"},
			Usage:   "estimator configuration `FILE`, defaults are used for missing fields",
		},
		&cli.StringFlag{
			Name:    sceneFlagObstacles,
			Aliases: []string{"o"},
			Usage:   "JSON `FILE` with a list of [x, y, z] obstacle positions",
		},
		&cli.StringFlag{
			Name:     sceneFlagConnections,
			Required: true,
			Usage:    "JSON `FILE` with a list of {\"start\": [...], \"end\": [...]} connections",
		},
		&cli.IntFlag{
			Name:  sceneFlagThreads,
			Usage: "number of estimator workers, enables the parallel estimator",
		},
		&cli.StringSliceFlag{
			Name:  sceneFlagPoi,
			Usage: "links checked against obstacles, all links when not set",
		},
	)
}

var app = &cli.App{
	Name:            "ssm-cost",
	Usage:           "evaluate the human-aware cost of robot motions",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "cost",
			Usage:     "print the scaling factor and the cost of each connection",
			UsageText: "ssm-cost cost --model <model> --connections <connections> [other options]",
			Flags:     sceneFlags(),
			Action:    CostAction,
		},
		{
			Name:      "dataset",
			Usage:     "write the scaling factor of every sample of every connection as CSV",
			UsageText: "ssm-cost dataset --model <model> --connections <connections> [other options]",
			Flags: append(sceneFlags(),
				&cli.StringFlag{
					Name:  datasetFlagOutput,
					Usage: "write the dataset to `FILE` instead of stdout",
				},
			),
			Action: DatasetAction,
		},
		{
			Name:  "chain",
			Usage: "print the links and joints of a kinematic model",
			Flags: append(modelFlags(),
				&cli.Float64SliceFlag{
					Name:  chainFlagConfiguration,
					Usage: "joint positions at which the links are placed, zero when not set",
				},
			),
			Action: ChainAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
