package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/logging"
)

// Environment variables overriding the estimator configuration.
const (
	EnvNumThreads    = "SSM_NUM_THREADS"
	EnvHumanVelocity = "SSM_HUMAN_VELOCITY"
)

// GetenvInt returns the integer value of the environment variable v, or def if it is unset or
// cannot be parsed.
func GetenvInt(v string, def int) int {
	x := os.Getenv(v)
	if x == "" {
		return def
	}

	i, err := strconv.Atoi(strings.TrimSpace(x))
	if err != nil {
		logging.Global().Warnf("can't parse %s=%q as an integer, using %d: %v", v, x, def, err)
		return def
	}

	return i
}

// GetenvFloat is GetenvInt for floating point values.
func GetenvFloat(v string, def float64) float64 {
	x := os.Getenv(v)
	if x == "" {
		return def
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		logging.Global().Warnf("can't parse %s=%q as a float, using %v: %v", v, x, def, err)
		return def
	}

	return f
}
