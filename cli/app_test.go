package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

const (
	planarURDF      = "../referenceframe/testdata/planar2r.urdf"
	testConnections = "../config/testdata/connections.json"
	testObstacles   = "../config/testdata/obstacles.json"
	testConfig      = "../config/testdata/estimator.json"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := NewApp(out, errOut).Run(append([]string{"ssm-cost"}, args...))
	return out.String(), errOut.String(), err
}

func TestCostAction(t *testing.T) {
	out, logs, err := runApp(t, "cost",
		"--model", planarURDF, "--connections", testConnections, "--obstacles", testObstacles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "UTOPIA")
	test.That(t, out, test.ShouldContainSubstring, "TOTAL")
	test.That(t, logs, test.ShouldContainSubstring, "evaluated connections")

	t.Run("parallel", func(t *testing.T) {
		parallel, _, err := runApp(t, "cost", "--threads", "2",
			"--model", planarURDF, "--connections", testConnections, "--obstacles", testObstacles)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parallel, test.ShouldEqual, out)
	})

	t.Run("config", func(t *testing.T) {
		_, _, err := runApp(t, "cost", "--config", testConfig,
			"--model", planarURDF, "--connections", testConnections, "--obstacles", testObstacles)
		test.That(t, err, test.ShouldBeNil)
	})

	t.Run("unknown poi", func(t *testing.T) {
		_, _, err := runApp(t, "cost", "--poi", "elbow",
			"--model", planarURDF, "--connections", testConnections)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "elbow")
	})

	t.Run("missing model", func(t *testing.T) {
		_, _, err := runApp(t, "cost", "--connections", testConnections)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestFormatScaling(t *testing.T) {
	test.That(t, formatScaling(motionplan.Evaluation{Lambda: 1}), test.ShouldEqual, "-")
	test.That(t, formatScaling(motionplan.Evaluation{Length: 2, Lambda: 1.5, Cost: 3}), test.ShouldEqual, "1.5000")
	test.That(t, formatScaling(motionplan.Evaluation{Length: 2, Lambda: ssm.Unsafe, Cost: 2e12}), test.ShouldEqual, "unsafe")
	// a large but finite scaling factor is still a number
	test.That(t, formatScaling(motionplan.Evaluation{Length: 1, Lambda: 1e13, Cost: 1e13}), test.ShouldEqual, "10000000000000.0000")
}

func TestDatasetAction(t *testing.T) {
	out, logs, err := runApp(t, "dataset",
		"--model", planarURDF, "--connections", testConnections, "--obstacles", testObstacles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs, test.ShouldContainSubstring, "dataset written")

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(records), test.ShouldBeGreaterThan, 2)
	test.That(t, records[0], test.ShouldResemble, datasetHeader)
	runID := records[1][0]
	test.That(t, runID, test.ShouldNotBeEmpty)
	for _, r := range records[1:] {
		test.That(t, r, test.ShouldHaveLength, len(datasetHeader))
		test.That(t, r[0], test.ShouldEqual, runID)
		// the last connection does not move
		test.That(t, r[1], test.ShouldNotEqual, "2")
	}
	test.That(t, records[1][1], test.ShouldEqual, "0")
	test.That(t, records[1][2], test.ShouldEqual, "0")
	test.That(t, records[len(records)-1][1], test.ShouldEqual, "1")

	t.Run("output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.csv")
		out, _, err := runApp(t, "dataset", "--output", path,
			"--model", planarURDF, "--connections", testConnections, "--obstacles", testObstacles)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldBeEmpty)

		//nolint:gosec
		data, err := os.ReadFile(path)
		test.That(t, err, test.ShouldBeNil)
		fileRecords, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fileRecords, test.ShouldHaveLength, len(records))
		test.That(t, fileRecords[1][0], test.ShouldNotEqual, runID)
	})
}

func TestChainAction(t *testing.T) {
	out, _, err := runApp(t, "chain", "--model", planarURDF, "--q", "0.5", "--q", "0")
	test.That(t, err, test.ShouldBeNil)
	for _, link := range []string{"base_link", "link1", "link2", "tool"} {
		test.That(t, out, test.ShouldContainSubstring, link)
	}

	_, _, err = runApp(t, "chain", "--model", planarURDF, "--q", "0.5")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = runApp(t, "chain", "--model", "testdata/robot.sdf")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot load kinematic model")
}

func TestChainTables(t *testing.T) {
	chain, err := referenceframe.ParseURDFFile(planarURDF, "")
	test.That(t, err, test.ShouldBeNil)
	joints, links, err := chainTables(chain, []referenceframe.Input{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joints, test.ShouldContainSubstring, "1.5000")
	test.That(t, joints, test.ShouldContainSubstring, "2.0000")
	test.That(t, strings.Count(links, "\n"), test.ShouldBeGreaterThan, len(chain.LinkNames()))
}
