package extensions

import (
	"errors"
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

// AssertInDelta fails when actual is further than tolerance away from expected
func AssertInDelta(t *testing.T, name string, expected, actual, tolerance float64) {
	t.Helper()
	if math.IsNaN(actual) || math.Abs(expected-actual) > tolerance {
		t.Fatalf("value mismatch for %s, expected %v (+/- %v), got %v", name, expected, tolerance, actual)
	}
}

func AssertSliceInDelta(t *testing.T, name string, expected, actual []float64, tolerance float64) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch for %s, expected %d, got %d", name, len(expected), len(actual))
	}
	for i := range expected {
		if math.IsNaN(actual[i]) || math.Abs(expected[i]-actual[i]) > tolerance {
			t.Fatalf("value mismatch for %s[%d], expected %v (+/- %v), got %v", name, i, expected[i], tolerance, actual[i])
		}
	}
}

func AssertErrorIs(t *testing.T, name string, expected, actual error) {
	t.Helper()
	if !errors.Is(actual, expected) {
		t.Fatalf("error mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}
