package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/motionplan/ssm"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
)

// ReadObstacles parses a JSON list of [x, y, z] positions, in meters.
func ReadObstacles(data []byte) ([]r3.Vector, error) {
	var raw [][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "cannot parse obstacles")
	}
	obstacles := make([]r3.Vector, 0, len(raw))
	for i, p := range raw {
		if len(p) != 3 {
			return nil, errors.Errorf("obstacle %d has %d coordinates, expected 3", i, len(p))
		}
		obstacles = append(obstacles, r3.Vector{X: p[0], Y: p[1], Z: p[2]})
	}
	return obstacles, nil
}

// ReadObstaclesFile is ReadObstacles on the content of a file.
func ReadObstaclesFile(path string) ([]r3.Vector, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read obstacles")
	}
	return ReadObstacles(data)
}

type connectionJSON struct {
	Start []float64 `json:"start"`
	End   []float64 `json:"end"`
}

// ReadConnections parses a JSON list of {"start": [...], "end": [...]} configurations.
func ReadConnections(data []byte) ([]ssm.Connection, error) {
	var raw []connectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "cannot parse connections")
	}
	conns := make([]ssm.Connection, 0, len(raw))
	for i, c := range raw {
		if len(c.Start) != len(c.End) {
			return nil, errors.Errorf("connection %d: start has %d joints, end has %d", i, len(c.Start), len(c.End))
		}
		conns = append(conns, ssm.Connection{
			Start: referenceframe.FloatsToInputs(c.Start),
			End:   referenceframe.FloatsToInputs(c.End),
		})
	}
	return conns, nil
}

// ReadConnectionsFile is ReadConnections on the content of a file.
func ReadConnectionsFile(path string) ([]ssm.Connection, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read connections")
	}
	return ReadConnections(data)
}

// ReadChainFile loads a kinematic chain from a URDF (.urdf, .xml) or JSON model file.
func ReadChainFile(path, name string) (*referenceframe.SerialChain, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".urdf", ".xml":
		return referenceframe.ParseURDFFile(path, name)
	case ".json":
		return referenceframe.ParseModelJSONFile(path, name)
	default:
		return nil, errors.Errorf("unsupported model file extension %q, use .urdf or .json", ext)
	}
}
