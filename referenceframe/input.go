package referenceframe

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Input is the input to a mutable frame, e.g. a joint angle or a prismatic joint position.
//   - revolute inputs are in radians.
//   - prismatic inputs are in meters.
type Input = float64

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(f []float64) []Input {
	inputs := make([]Input, len(f))
	copy(inputs, f)
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	f := make([]float64, len(inputs))
	copy(f, inputs)
	return f
}

// InterpolateInputs will return a set of inputs that are the specified percent between the two given sets of
// inputs. For example, setting by to 0.5 will return the inputs halfway between the from/to values, and 0.25 would
// return one quarter of the way from "from" to "to".
func InterpolateInputs(from, to []Input, by float64) []Input {
	newVals := make([]Input, 0, len(from))
	for i, j1 := range from {
		newVals = append(newVals, j1+((to[i]-j1)*by))
	}
	return newVals
}

// InputsDelta returns to - from, element-wise. The inputs must have the same length.
func InputsDelta(from, to []Input) []float64 {
	delta := make([]float64, len(to))
	floats.SubTo(delta, to, from)
	return delta
}

// InputsL2Distance returns the two-norm (the sqrt of the sum of the squares) between two Input sets.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		return math.Inf(1)
	}
	// 2 is the L value returning a standard L2 Normalization
	return floats.Distance(from, to, 2)
}

// InputsEqual reports whether two configurations are identical, element by element.
func InputsEqual(a, b []Input) bool {
	return floats.Equal(a, b)
}
