package ssm

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/referenceframe"
	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
)

// newSlideChain is a single prismatic joint along x starting at originX, carrying a "tool" link.
// The tool sits at x = originX + q and moves at dq along x.
func newSlideChain(t *testing.T, originX, maxSpeed float64) *referenceframe.SerialChain {
	t.Helper()
	slide, err := referenceframe.NewTranslationalFrame(
		"slide",
		spatialmath.NewPoseFromPoint(r3.Vector{X: originX}),
		r3.Vector{X: 1},
		referenceframe.Limit{Min: -10, Max: 10},
		maxSpeed,
	)
	test.That(t, err, test.ShouldBeNil)
	chain, err := referenceframe.NewSerialChain("slide", []referenceframe.Frame{slide, referenceframe.NewZeroStaticFrame("tool")})
	test.That(t, err, test.ShouldBeNil)
	return chain
}

func newPlanarChain(t *testing.T) *referenceframe.SerialChain {
	t.Helper()
	chain, err := referenceframe.ParseURDFFile("../../referenceframe/testdata/planar2r.urdf", "")
	test.That(t, err, test.ShouldBeNil)
	return chain
}

// scenarioParams are the parameters of the single joint reference scenarios.
func scenarioParams() SafetyParams {
	return SafetyParams{
		MaxStepSize:  1,
		MinDistance:  0.1,
		ReactionTime: 0.1,
		MaxCartAcc:   1.0,
	}
}

// referenceSafeVelocity is the ISO/TS 15066 protective separation distance, with a static human,
// solved for the robot speed: d = v*Tr + v^2/(2a) + C.
func referenceSafeVelocity(p SafetyParams, distance float64) float64 {
	a, tr := p.MaxCartAcc, p.ReactionTime
	return -a*tr + math.Sqrt(a*a*tr*tr+2*a*(distance-p.MinDistance))
}
