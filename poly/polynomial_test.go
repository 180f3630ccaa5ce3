package poly

import (
	"math/cmplx"
	"testing"
)

func TestDegree(t *testing.T) {
	tests := []struct {
		name string
		p    Polynomial
		want int
	}{
		{"empty", Polynomial{}, -1},
		{"all zero", Polynomial{0, 0}, -1},
		{"constant", Polynomial{3}, 0},
		{"padded", Polynomial{1, 2, 0, 0}, 1},
		{"cubic", Polynomial{1, 0, 0, 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Degree(); got != tt.want {
				t.Errorf("Degree() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvalAndDerivative(t *testing.T) {
	// p(z) = 1 + 2z + 3z^2, p'(z) = 2 + 6z
	p := Polynomial{1, 2, 3}
	for _, z := range []complex128{0, 1, -2, 1i, 2 - 3i} {
		f, df := p.EvalAndDerivative(z)
		if want := p.Eval(z); f != want {
			t.Errorf("EvalAndDerivative(%v) f = %v, Eval = %v", z, f, want)
		}
		if want := p.Derivative().Eval(z); df != want {
			t.Errorf("EvalAndDerivative(%v) df = %v, Derivative().Eval = %v", z, df, want)
		}
	}
}

func TestDeflate(t *testing.T) {
	// (z-1)(z-2)(z-3) deflated at 2 leaves (z-1)(z-3).
	p := Polynomial{-6, 11, -6, 1}
	q := p.Deflate(2)

	if q.Degree() != 2 {
		t.Fatalf("Deflate degree = %d, want 2", q.Degree())
	}
	for _, root := range []complex128{1, 3} {
		if r := cmplx.Abs(q.Eval(root)); r > 1e-12 {
			t.Errorf("deflated poly at %v = %g, want 0", root, r)
		}
	}
	if r := cmplx.Abs(q.Eval(2)); r < 1e-12 {
		t.Error("deflated poly still vanishes at the removed root")
	}
}

func TestMulAdd(t *testing.T) {
	// (1 + z)(1 - z) + z^2 = 1
	a := Polynomial{1, 1}
	b := Polynomial{1, -1}
	got := a.Mul(b).Add(Polynomial{0, 0, 1})

	if got.Degree() != 0 {
		t.Fatalf("degree = %d, want 0 (coefficients %v)", got.Degree(), got)
	}
	if got[0] != 1 {
		t.Errorf("constant term = %v, want 1", got[0])
	}
}

func TestCauchyRadius(t *testing.T) {
	// All roots of z^3 - 8 have modulus 2; the bound must cover them.
	p := Polynomial{-8, 0, 0, 1}
	if r := p.cauchyRadius(); r < 2 {
		t.Errorf("cauchyRadius() = %g, does not bound the roots", r)
	}
}
