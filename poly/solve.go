package poly

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// Solver tuning defaults. All are adjustable through options; the degree
// cap is the only hard limit, rejecting absurd inputs before any work.
const (
	DefaultMaxIterations = 256
	DefaultTolerance     = 1e-12
	DefaultDegreeCap     = 512
)

// ErrDegreeTooLarge is returned by Solve when the polynomial degree
// exceeds the configured cap.
var ErrDegreeTooLarge = errors.New("poly: degree exceeds cap")

// Root is one root of a polynomial together with its convergence status.
// Residual is |p(Value)|; Converged reports whether it met the tolerance.
// Unconverged roots are still the solver's best estimates and are often
// usable as Newton seeds.
type Root struct {
	Value     complex128
	Residual  float64
	Converged bool
}

// Option configures a Solve call.
type Option func(*options)

type options struct {
	maxIterations int
	tolerance     float64
	degreeCap     int
}

func defaultOptions() options {
	return options{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		degreeCap:     DefaultDegreeCap,
	}
}

// WithMaxIterations caps the Aberth-Ehrlich iteration count.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithTolerance sets the residual |p(root)| below which a root counts as
// converged.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithDegreeCap sets the maximum accepted polynomial degree.
func WithDegreeCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.degreeCap = n
		}
	}
}

// Solve returns all roots of p.
//
// Degree 0 (and the zero polynomial) yields an empty root set. Degrees 1
// and 2 use closed forms and are always converged. Higher degrees run
// Aberth-Ehrlich simultaneous iteration seeded on a perturbed Cauchy
// circle; roots whose residual stays above the tolerance after the
// iteration cap are returned with Converged == false rather than aborting
// the batch. Non-finite coefficients yield an empty root set.
//
// The only error is ErrDegreeTooLarge, for degrees above the cap.
func Solve(p Polynomial, opts ...Option) ([]Root, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !p.isFinite() {
		return nil, nil
	}
	p = p.trim()
	n := p.Degree()

	if n > o.degreeCap {
		return nil, fmt.Errorf("%w: %d > %d", ErrDegreeTooLarge, n, o.degreeCap)
	}

	switch n {
	case -1, 0:
		return nil, nil
	case 1:
		return []Root{converged(p, -p[0]/p[1])}, nil
	case 2:
		r1, r2 := solveQuadratic(p[0], p[1], p[2])
		return []Root{converged(p, r1), converged(p, r2)}, nil
	default:
		return aberth(p, o), nil
	}
}

// Roots returns just the converged root values of p, discarding flags.
// Convenience for callers that treat unconverged roots as absent.
func Roots(p Polynomial, opts ...Option) []complex128 {
	rs, err := Solve(p, opts...)
	if err != nil {
		return nil
	}
	vals := make([]complex128, 0, len(rs))
	for _, r := range rs {
		if r.Converged {
			vals = append(vals, r.Value)
		}
	}
	return vals
}

func converged(p Polynomial, z complex128) Root {
	return Root{Value: z, Residual: cmplx.Abs(p.Eval(z)), Converged: true}
}

// solveQuadratic returns the roots of a + bz + cz^2 using the stable
// formulation: the larger root from the standard formula with the
// sign-matched discriminant, the smaller from the product of roots,
// avoiding cancellation when b dominates.
func solveQuadratic(a, b, c complex128) (complex128, complex128) {
	disc := cmplx.Sqrt(b*b - 4*a*c)
	q := b + disc
	if alt := b - disc; cmplx.Abs(alt) > cmplx.Abs(q) {
		q = alt
	}
	if q == 0 {
		// b and the discriminant both vanish: double root.
		r := cmplx.Sqrt(-a / c)
		return r, -r
	}
	q *= -0.5
	return q / c, a / q
}

// aberth runs Aberth-Ehrlich simultaneous iteration on a trimmed
// polynomial of degree >= 3.
//
// All approximations update together each sweep: the Newton step of each
// is corrected by the repulsion sum over the others, which keeps the
// approximations distinct and handles clustered roots far better than
// sequential deflation. The sweep stops early once every root's Newton
// step is negligible.
func aberth(p Polynomial, o options) []Root {
	n := p.Degree()
	z := initialGuesses(p, n)
	moved := true

	for iter := 0; iter < o.maxIterations && moved; iter++ {
		moved = false
		for k := range z {
			f, df := p.EvalAndDerivative(z[k])
			if f == 0 {
				continue
			}

			w := f / df
			var repulsion complex128
			for j := range z {
				if j != k {
					repulsion += 1 / (z[k] - z[j])
				}
			}

			denom := 1 - w*repulsion
			if denom == 0 {
				// Colliding approximations; nudge and retry next sweep.
				z[k] += complex(o.tolerance, o.tolerance)
				moved = true
				continue
			}

			step := w / denom
			z[k] -= step
			if cmplx.IsNaN(z[k]) {
				// Restart this approximation from a fresh angle.
				z[k] = initialGuesses(p, n)[k]
				moved = true
				continue
			}
			if cmplx.Abs(step) > o.tolerance*(1+cmplx.Abs(z[k])) {
				moved = true
			}
		}
	}

	roots := make([]Root, n)
	for k, zk := range z {
		res := cmplx.Abs(p.Eval(zk))
		roots[k] = Root{
			Value:     zk,
			Residual:  res,
			Converged: res <= residualBound(p, zk, o.tolerance),
		}
	}
	return roots
}

// residualBound scales the convergence tolerance by the magnitude of the
// evaluated terms, so large-coefficient polynomials are not penalized for
// ordinary floating-point growth.
func residualBound(p Polynomial, z complex128, tol float64) float64 {
	var scale float64
	zp := 1.0
	az := cmplx.Abs(z)
	for _, a := range p {
		scale += cmplx.Abs(a) * zp
		zp *= az
	}
	return tol * math.Max(scale, 1)
}

// initialGuesses places the starting approximations on a circle of the
// Cauchy root bound radius, rotated by a fixed irrational offset so no
// guess starts on a symmetry axis of the polynomial.
func initialGuesses(p Polynomial, n int) []complex128 {
	r := p.cauchyRadius() * 0.7
	z := make([]complex128, n)
	const offset = 0.3013034 // avoids the real axis and rational symmetries
	for k := range z {
		theta := 2 * math.Pi * (float64(k)/float64(n) + offset)
		s, c := math.Sincos(theta)
		z[k] = complex(r*c, r*s)
	}
	return z
}

// NewtonRefine polishes a root estimate of p by Newton's method, for
// continuation seeding: a root of a nearby polynomial is usually within
// the quadratic convergence basin of the corresponding root of p.
func NewtonRefine(p Polynomial, guess complex128, opts ...Option) Root {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	z := guess
	for i := 0; i < o.maxIterations; i++ {
		f, df := p.EvalAndDerivative(z)
		if df == 0 {
			break
		}
		step := f / df
		z -= step
		if cmplx.IsNaN(z) {
			z = guess
			break
		}
		if cmplx.Abs(step) <= o.tolerance*(1+cmplx.Abs(z)) {
			break
		}
	}

	res := cmplx.Abs(p.Eval(z))
	return Root{
		Value:     z,
		Residual:  res,
		Converged: res <= residualBound(p, z, o.tolerance),
	}
}
