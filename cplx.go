package dynamo

import "math"

// Shared numerical helpers for complex arithmetic. Orbit evaluation works
// with squared norms throughout to avoid per-iteration square roots.

// NormSqr returns |z|^2 without taking a square root.
func NormSqr(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im
}

// DistSqr returns |a-b|^2.
func DistSqr(a, b complex128) float64 {
	return NormSqr(a - b)
}

// l1Norm returns |re(z)| + |im(z)|. Cheaper than the Euclidean norm and
// monotone enough for spacing comparisons on traced curves.
func l1Norm(z complex128) float64 {
	return math.Abs(real(z)) + math.Abs(imag(z))
}

// isNaNC reports whether either component of z is NaN.
func isNaNC(z complex128) bool {
	return math.IsNaN(real(z)) || math.IsNaN(imag(z))
}

// isFiniteC reports whether both components of z are finite.
func isFiniteC(z complex128) bool {
	return isFinite(real(z)) && isFinite(imag(z))
}

// isFinite returns true if x is neither infinite nor NaN.
func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

// logBase returns log_base(x).
func logBase(x, base float64) float64 {
	return math.Log(x) / math.Log(base)
}

// unitCircle returns e^(2*pi*i*theta).
func unitCircle(theta float64) complex128 {
	s, c := math.Sincos(2 * math.Pi * theta)
	return complex(c, s)
}
