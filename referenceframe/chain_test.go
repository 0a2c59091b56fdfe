package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
)

func TestPlanarChainPoses(t *testing.T) {
	chain, err := ParseModelJSONFile("testdata/planar2r.json", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chain.Name(), test.ShouldEqual, "planar2r")
	test.That(t, chain.DoF(), test.ShouldEqual, 2)
	test.That(t, chain.LinkNames(), test.ShouldResemble, []string{"base", "link1", "link2"})
	test.That(t, chain.MaxSpeeds(), test.ShouldResemble, []float64{1.5, 2.0})

	poses, err := chain.Poses([]Input{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(poses), test.ShouldEqual, 3)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[0], spatialmath.NewZeroPose(), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[1], spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[2], spatialmath.NewPoseFromPoint(r3.Vector{X: 2}), 1e-9), test.ShouldBeTrue)

	poses, err = chain.Poses([]Input{math.Pi / 2, -math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[1], spatialmath.NewPoseFromPoint(r3.Vector{Y: 1}), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[2], spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 1}), 1e-9), test.ShouldBeTrue)

	endPose, err := chain.Transform([]Input{math.Pi / 2, -math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(endPose, poses[2]), test.ShouldBeTrue)

	_, err = chain.Poses([]Input{0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not match")
}

func TestPlanarChainTwists(t *testing.T) {
	chain, err := ParseModelJSONFile("testdata/planar2r.json", "")
	test.That(t, err, test.ShouldBeNil)

	twists, err := chain.Twists([]Input{0, 0}, []Input{1, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(twists), test.ShouldEqual, 3)
	test.That(t, twists[0].Linear.ApproxEqual(r3.Vector{}), test.ShouldBeTrue)
	test.That(t, twists[1].Linear.ApproxEqual(r3.Vector{Y: 1}), test.ShouldBeTrue)
	test.That(t, twists[2].Linear.ApproxEqual(r3.Vector{Y: 2}), test.ShouldBeTrue)
	test.That(t, twists[2].Angular.Sub(r3.Vector{Z: 1}).Norm(), test.ShouldBeLessThan, 1e-9)

	twists, err = chain.Twists([]Input{0, 0}, []Input{0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, twists[1].Linear.ApproxEqual(r3.Vector{}), test.ShouldBeTrue)
	test.That(t, twists[1].Angular.ApproxEqual(r3.Vector{}), test.ShouldBeTrue)
	test.That(t, twists[2].Linear.ApproxEqual(r3.Vector{Y: 1}), test.ShouldBeTrue)

	_, err = chain.Twists([]Input{0, 0}, []Input{1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTwistsMatchFiniteDifference(t *testing.T) {
	chain, err := ParseURDFFile("testdata/planar2r.urdf", "")
	test.That(t, err, test.ShouldBeNil)

	q := []Input{0.3, -1.1}
	dq := []Input{0.7, -0.4}
	const h = 1e-6

	twists, err := chain.Twists(q, dq)
	test.That(t, err, test.ShouldBeNil)
	before, err := chain.Poses(q)
	test.That(t, err, test.ShouldBeNil)
	after, err := chain.Poses(InterpolateInputs(q, []Input{q[0] + dq[0], q[1] + dq[1]}, h))
	test.That(t, err, test.ShouldBeNil)

	for i := range twists {
		numeric := after[i].Point().Sub(before[i].Point()).Mul(1 / h)
		test.That(t, numeric.Sub(twists[i].Linear).Norm(), test.ShouldBeLessThan, 1e-5)
	}
}

func TestURDFChain(t *testing.T) {
	chain, err := ParseURDFFile("testdata/planar2r.urdf", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chain.Name(), test.ShouldEqual, "planar2r")
	test.That(t, chain.LinkNames(), test.ShouldResemble, []string{"base_link", "link1", "link2", "tool"})
	test.That(t, chain.MaxSpeeds(), test.ShouldResemble, []float64{1.5, 2.0})
	test.That(t, limitsAlmostEqual(chain.Limits(), []Limit{{-3.14, 3.14}, {-3.14, 3.14}}), test.ShouldBeTrue)

	poses, err := chain.Poses([]Input{math.Pi / 2, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[2], spatialmath.NewPoseFromPoint(r3.Vector{Y: 1}), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(poses[3], spatialmath.NewPoseFromPoint(r3.Vector{Y: 2}), 1e-9), test.ShouldBeTrue)

	t.Run("prismatic and continuous joints", func(t *testing.T) {
		rail, err := ParseURDFFile("testdata/rail.urdf", "my_rail")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rail.Name(), test.ShouldEqual, "my_rail")
		test.That(t, rail.LinkNames(), test.ShouldResemble, []string{"base_link", "carriage", "arm"})
		test.That(t, rail.MaxSpeeds(), test.ShouldResemble, []float64{0.5, 1.0})
		test.That(t, math.IsInf(rail.Limits()[1].Max, 1), test.ShouldBeTrue)

		poses, err := rail.Poses([]Input{1.5, 0.2})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, poses[1].Point().Sub(r3.Vector{X: 1.5, Z: 0.5}).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, poses[2].Point().Sub(r3.Vector{X: 1.5, Z: 0.5}).Norm(), test.ShouldBeLessThan, 1e-9)

		twists, err := rail.Twists([]Input{1.5, 0.2}, []Input{0.5, 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, twists[1].Linear.Sub(r3.Vector{X: 0.5}).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, twists[2].Linear.Sub(r3.Vector{X: 0.5}).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, twists[2].Angular.Sub(r3.Vector{Z: 1}).Norm(), test.ShouldBeLessThan, 1e-9)
	})

	t.Run("bad urdf", func(t *testing.T) {
		_, err := UnmarshalURDF(nil, "")
		test.That(t, err, test.ShouldBeError, ErrNoModelInformation)

		_, err = UnmarshalURDF([]byte(`<robot name="r"><link name="a"/><link name="b"/>
			<joint name="j" type="floating"><parent link="a"/><child link="b"/></joint></robot>`), "")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported joint type")

		// no velocity limit means no usable timing
		_, err = UnmarshalURDF([]byte(`<robot name="r"><link name="a"/><link name="b"/>
			<joint name="j" type="revolute"><parent link="a"/><child link="b"/><axis xyz="0 0 1"/></joint></robot>`), "")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "max speed")
	})
}

func TestChainClone(t *testing.T) {
	chain, err := ParseModelJSONFile("testdata/planar2r.json", "")
	test.That(t, err, test.ShouldBeNil)

	clone := chain.Clone()
	test.That(t, clone.Name(), test.ShouldEqual, chain.Name())
	test.That(t, clone.LinkNames(), test.ShouldResemble, chain.LinkNames())
	test.That(t, limitsAlmostEqual(clone.Limits(), chain.Limits()), test.ShouldBeTrue)

	// scratch state is not shared
	original, err := chain.Poses([]Input{0, 0})
	test.That(t, err, test.ShouldBeNil)
	_, err = clone.Poses([]Input{1, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostCoincidentEps(original[2], spatialmath.NewPoseFromPoint(r3.Vector{X: 2}), 1e-9), test.ShouldBeTrue)

	test.That(t, chain.AreJointPositionsValid([]Input{0, 0}), test.ShouldBeTrue)
	test.That(t, chain.AreJointPositionsValid([]Input{0, 4}), test.ShouldBeFalse)
	test.That(t, chain.AreJointPositionsValid([]Input{0}), test.ShouldBeFalse)
}

func TestModelJSONErrors(t *testing.T) {
	_, err := UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldBeError, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "kinematic_param_type": "DH"}`), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "links": [{"id": "world"}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "reserved word")

	// two leaves
	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "links": [
		{"id": "a", "parent": "world"}, {"id": "b", "parent": "a"}, {"id": "c", "parent": "a"}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, ErrNeedOneEndEffector.Error())

	_, err = UnmarshalModelJSON([]byte(`{"name": "x", "links": [{"id": "a", "parent": "world"}],
		"joints": [{"id": "j", "type": "revolute", "parent": "a", "axis": {"z": 1}, "max_speed": 0}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)
}
