package dynamo

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestFindRootNewton(t *testing.T) {
	square := func(z complex128) (complex128, complex128) {
		return z*z - 2, 2 * z
	}

	z, _, _, err := findRootNewton(square, 1)
	if err != nil {
		t.Fatalf("findRootNewton: %v", err)
	}
	if cmplx.Abs(z-complex(math.Sqrt2, 0)) > 1e-9 {
		t.Errorf("root = %v, want sqrt 2", z)
	}

	// The basin is chosen by the start point.
	z, _, _, err = findRootNewton(square, -1)
	if err != nil {
		t.Fatalf("findRootNewton: %v", err)
	}
	if cmplx.Abs(z+complex(math.Sqrt2, 0)) > 1e-9 {
		t.Errorf("root = %v, want -sqrt 2", z)
	}
}

func TestFindRootNewtonNoConvergence(t *testing.T) {
	// A constant function marches off at unit steps forever.
	constant := func(z complex128) (complex128, complex128) {
		return 1, 1
	}
	_, _, _, err := findRootNewton(constant, 0)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("err = %v, want ErrNoConvergence", err)
	}
}

func TestFindRootNewtonNaN(t *testing.T) {
	poison := func(z complex128) (complex128, complex128) {
		return complex(math.NaN(), 0), 1
	}
	_, _, _, err := findRootNewton(poison, 1)
	if !errors.Is(err, ErrNaN) {
		t.Errorf("err = %v, want ErrNaN", err)
	}
}

func TestFindTargetNewton(t *testing.T) {
	square := func(z complex128) (complex128, complex128) {
		return z * z, 2 * z
	}

	z, f, _, err := findTargetNewton(square, 1, 9, 1e-9)
	if err != nil {
		t.Fatalf("findTargetNewton: %v", err)
	}
	if cmplx.Abs(z-3) > 1e-6 {
		t.Errorf("solution = %v, want 3", z)
	}
	if cmplx.Abs(f-9) > 1e-4 {
		t.Errorf("residual value = %v, want near 9", f)
	}

	// Complex targets work the same; aim for z^2 = -4 from i.
	z, _, _, err = findTargetNewton(square, 1i, -4, 1e-9)
	if err != nil {
		t.Fatalf("findTargetNewton: %v", err)
	}
	if cmplx.Abs(z-2i) > 1e-6 {
		t.Errorf("solution = %v, want 2i", z)
	}
}

func TestFindTargetNewtonPartialState(t *testing.T) {
	// On failure the best estimate still comes back so a caller can
	// continue from it.
	constant := func(z complex128) (complex128, complex128) {
		return 0, 1
	}
	z, _, _, err := findTargetNewton(constant, 0, 1, 1e-30)
	if err == nil {
		t.Fatal("constant function converged to a moving target")
	}
	if isNaNC(z) {
		t.Error("failed iteration returned NaN state")
	}
}
