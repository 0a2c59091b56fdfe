package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1.0001, 1e-3), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.01, 1e-3), test.ShouldBeFalse)
}

func TestIsFinite(t *testing.T) {
	test.That(t, IsFinite(1e12), test.ShouldBeTrue)
	test.That(t, IsFinite(math.Inf(1)), test.ShouldBeFalse)
	test.That(t, IsFinite(math.NaN()), test.ShouldBeFalse)
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("SSM_TEST_INT", "7")
	test.That(t, GetenvInt("SSM_TEST_INT", 2), test.ShouldEqual, 7)
	t.Setenv("SSM_TEST_INT", "seven")
	test.That(t, GetenvInt("SSM_TEST_INT", 2), test.ShouldEqual, 2)
	test.That(t, GetenvInt("SSM_TEST_UNSET_INT", 3), test.ShouldEqual, 3)

	t.Setenv("SSM_TEST_FLOAT", "0.25")
	test.That(t, GetenvFloat("SSM_TEST_FLOAT", 1), test.ShouldEqual, 0.25)
}
