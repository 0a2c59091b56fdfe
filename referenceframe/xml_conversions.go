package referenceframe

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
)

type frame struct {
	Link string `xml:"link,attr"`
}

type limit struct {
	XMLName  xml.Name `xml:"limit"`
	Lower    float64  `xml:"lower,attr"`    // translation limits are in meters, revolute limits are in radians
	Upper    float64  `xml:"upper,attr"`    // translation limits are in meters, revolute limits are in radians
	Velocity float64  `xml:"velocity,attr"` // m/s for prismatic joints, rad/s for revolute ones
}

type axis struct {
	XMLName xml.Name `xml:"axis"`
	XYZ     string   `xml:"xyz,attr"` // "x y z" format
}

// Parse returns the joint axis. A missing axis defaults to (1, 0, 0).
func (a *axis) Parse() (r3.Vector, error) {
	if a == nil {
		return r3.Vector{X: 1}, nil
	}
	xyz, err := spaceDelimitedStringToFloatSlice(a.XYZ, 3)
	if err != nil {
		return r3.Vector{}, errors.Wrap(err, "bad joint axis")
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

type pose struct {
	XMLName xml.Name `xml:"origin"`
	RPY     string   `xml:"rpy,attr"` // Fixed frame angle "r p y" format, in radians
	XYZ     string   `xml:"xyz,attr"` // "x y z" format, in meters
}

// Parse returns the origin as a pose. A missing origin is the identity.
func (p *pose) Parse() (spatialmath.Pose, error) {
	if p == nil {
		return spatialmath.NewZeroPose(), nil
	}
	xyz, err := spaceDelimitedStringToFloatSlice(p.XYZ, 3)
	if err != nil {
		return nil, errors.Wrap(err, "bad origin xyz")
	}
	rpy, err := spaceDelimitedStringToFloatSlice(p.RPY, 3)
	if err != nil {
		return nil, errors.Wrap(err, "bad origin rpy")
	}
	return spatialmath.NewPose(
		r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		spatialmath.NewOrientationFromRPY(rpy[0], rpy[1], rpy[2]),
	), nil
}

// spaceDelimitedStringToFloatSlice splits up a space-delimited field and converts it to floats. An
// empty field is n zeros, as URDF allows omitting it.
func spaceDelimitedStringToFloatSlice(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return make([]float64, n), nil
	}
	if len(fields) != n {
		return nil, errors.Errorf("expected %d values, got %q", n, s)
	}
	converted := make([]float64, 0, n)
	for _, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		converted = append(converted, value)
	}
	return converted, nil
}
