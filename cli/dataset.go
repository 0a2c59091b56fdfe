package cli

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
)

var datasetHeader = []string{
	"run_id", "connection", "sample", "q", "dq",
	"scaling_factor", "tangential_speed", "distance", "safe_velocity",
	"poi", "poi_x", "poi_y", "poi_z", "obstacle",
}

// DatasetAction writes one CSV row per sample of every connection, with the pair of obstacle and
// poi dominating the sample.
func DatasetAction(c *cli.Context) (err error) {
	s, err := loadScene(c, true)
	if err != nil {
		return err
	}
	se, ok := s.estimator.(*ssm.SequentialEstimator)
	if !ok {
		return errors.Errorf("expected a sequential estimator, got %T", s.estimator)
	}

	out := c.App.Writer
	if path := c.String(datasetFlagOutput); path != "" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrap(createErr, "cannot create dataset file")
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		out = f
	}

	runID := uuid.NewString()
	rows, err := writeDataset(out, runID, se, s.connections)
	if err != nil {
		return err
	}
	s.logger.Infow("dataset written", "run_id", runID, "rows", rows)
	return nil
}

func writeDataset(out io.Writer, runID string, se *ssm.SequentialEstimator, conns []ssm.Connection) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(datasetHeader); err != nil {
		return 0, err
	}
	rows := 0
	for i, conn := range conns {
		samples, err := se.Samples(conn.Start, conn.End)
		if errors.Is(err, ssm.ErrZeroLengthConnection) {
			continue
		}
		if err != nil {
			return rows, errors.Wrapf(err, "connection %d", i)
		}
		for j, sample := range samples {
			record := []string{
				runID,
				strconv.Itoa(i),
				strconv.Itoa(j),
				formatInputs(sample.Q),
				formatInputs(sample.Dq),
				formatFloat(sample.ScalingFactor),
				formatFloat(sample.TangentialSpeed),
				formatFloat(sample.Distance),
				formatFloat(sample.SafeVelocity),
				sample.PoiName,
				formatFloat(sample.PoiPosition.X),
				formatFloat(sample.PoiPosition.Y),
				formatFloat(sample.PoiPosition.Z),
				strconv.Itoa(sample.Obstacle),
			}
			if err := w.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
	}
	w.Flush()
	return rows, w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
