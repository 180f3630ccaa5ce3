// Package poly finds all complex roots of polynomials with complex
// coefficients.
//
// A [Polynomial] is a coefficient slice, constant term first. [Solve]
// dispatches on degree: closed forms up to degree two, Aberth-Ehrlich
// simultaneous iteration above that. Roots that fail the residual check
// come back flagged rather than failing the batch, so callers locating
// periodic cycles always get the usable part of a solve.
package poly

import (
	"math"
	"math/cmplx"
)

// Polynomial holds coefficients in ascending degree order: p[i] is the
// coefficient of z^i. The zero polynomial is the empty (or all-zero) slice.
type Polynomial []complex128

// coeffEps is the relative threshold below which a leading coefficient is
// treated as zero and deflated away before solving.
const coeffEps = 1e-13

// Degree returns the degree after trimming zero leading coefficients.
// The zero polynomial has degree -1.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

// Eval evaluates p at z by Horner's rule.
func (p Polynomial) Eval(z complex128) complex128 {
	var acc complex128
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*z + p[i]
	}
	return acc
}

// EvalAndDerivative evaluates p and p' at z in one Horner pass.
func (p Polynomial) EvalAndDerivative(z complex128) (f, df complex128) {
	for i := len(p) - 1; i >= 0; i-- {
		df = df*z + f
		f = f*z + p[i]
	}
	return f, df
}

// Derivative returns p'.
func (p Polynomial) Derivative() Polynomial {
	if len(p) < 2 {
		return Polynomial{}
	}
	d := make(Polynomial, len(p)-1)
	for i := 1; i < len(p); i++ {
		d[i-1] = complex(float64(i), 0) * p[i]
	}
	return d
}

// Mul returns the product p*q by coefficient convolution.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	if len(p) == 0 || len(q) == 0 {
		return Polynomial{}
	}
	out := make(Polynomial, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	if len(q) > len(p) {
		p, q = q, p
	}
	out := make(Polynomial, len(p))
	copy(out, p)
	for i, b := range q {
		out[i] += b
	}
	return out
}

// Deflate divides p by (z - root) using synthetic division, discarding the
// remainder. The result has degree one less than p.
func (p Polynomial) Deflate(root complex128) Polynomial {
	n := p.Degree()
	if n < 1 {
		return Polynomial{}
	}
	q := make(Polynomial, n)
	carry := p[n]
	for i := n - 1; i >= 0; i-- {
		q[i] = carry
		carry = p[i] + carry*root
	}
	return q
}

// trim drops leading coefficients that are zero or negligible relative to
// the largest coefficient magnitude. Degenerate leading terms otherwise
// poison the monic normalization in the iterative solver.
func (p Polynomial) trim() Polynomial {
	var scale float64
	for _, a := range p {
		if m := cmplx.Abs(a); m > scale {
			scale = m
		}
	}
	if scale == 0 {
		return Polynomial{}
	}
	n := len(p)
	for n > 0 && cmplx.Abs(p[n-1]) <= coeffEps*scale {
		n--
	}
	return p[:n]
}

// isFinite reports whether every coefficient of p is finite.
func (p Polynomial) isFinite() bool {
	for _, a := range p {
		if math.IsNaN(real(a)) || math.IsNaN(imag(a)) ||
			math.IsInf(real(a), 0) || math.IsInf(imag(a), 0) {
			return false
		}
	}
	return true
}

// cauchyRadius returns the Cauchy bound 1 + max|a_i / a_n| on the modulus
// of the roots of p. The polynomial must be trimmed and of degree >= 1.
func (p Polynomial) cauchyRadius() float64 {
	n := len(p) - 1
	lead := cmplx.Abs(p[n])
	var m float64
	for _, a := range p[:n] {
		if r := cmplx.Abs(a); r > m {
			m = r
		}
	}
	return 1 + m/lead
}
