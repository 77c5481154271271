// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the default absolute tolerance for geometry comparisons.
const Tolerance = 1e-9

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Near reports whether a and b differ by at most tol.
func Near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// VecNear reports whether every component of a and b differs by at most tol.
func VecNear(a, b r3.Vec, tol float64) bool {
	return Near(a.X, b.X, tol) && Near(a.Y, b.Y, tol) && Near(a.Z, b.Z, tol)
}

// AssertVecNear fails the test if got and want differ by more than tol in
// any component.
func AssertVecNear(t testing.TB, got, want r3.Vec, tol float64) {
	t.Helper()
	if !VecNear(got, want, tol) {
		t.Errorf("vector = %+v, want %+v (tol %g)", got, want, tol)
	}
}

// AssertMatrixNear fails the test if any entry of got and want differs by
// more than tol.
func AssertMatrixNear(t testing.TB, got, want [3][3]float64, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !Near(got[i][j], want[i][j], tol) {
				t.Errorf("m(%d, %d) = %0.9f, want %0.9f", i, j, got[i][j], want[i][j])
			}
		}
	}
}
