package dynamo

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/DannyStoll1/dynamo/poly"
)

// Mandelbrot is the parameter plane of the quadratic family z^2 + c with
// the critical orbit of 0 as the marked orbit. It carries closed-form
// shortcuts: early interior bailout for the main cardioid and the
// period-2 bulb, and exact cycle catalogs for low periods.
type Mandelbrot struct{}

// NewMandelbrot returns the quadratic parameter plane.
func NewMandelbrot() Mandelbrot { return Mandelbrot{} }

func (Mandelbrot) Name() string { return "Mandelbrot" }

func (Mandelbrot) Map(z, c complex128) complex128 { return z*z + c }

func (Mandelbrot) MapAndDerivative(z, c complex128) (complex128, complex128) {
	return z*z + c, 2 * z
}

func (Mandelbrot) Start(_, _ complex128) complex128 { return 0 }

func (Mandelbrot) CriticalPoints(complex128) []complex128 { return []complex128{0} }

func (Mandelbrot) EscapeRadius() float64 { return 1e26 }

func (Mandelbrot) DegreeReal() float64 { return 2 }

func (Mandelbrot) Degree() int { return 2 }

func (Mandelbrot) EscapingPeriod() int { return 1 }

func (Mandelbrot) EscapingPhase() int { return 1 }

func (Mandelbrot) DefaultBounds() Bounds {
	return Bounds{MinX: -2.1, MaxX: 0.55, MinY: -1.25, MaxY: 1.25}
}

func (Mandelbrot) DefaultSelection() complex128 { return complex(-1, 0) }

func (Mandelbrot) Gradient(z, c complex128) (f, dfdz, dfdc complex128) {
	return z*z + c, 2 * z, 1
}

func (Mandelbrot) StartGradient(_, _ complex128) (z0, dz0dt, dz0dc complex128) {
	return 0, 0, 0
}

func (Mandelbrot) ParamMapAndDerivative(t complex128) (complex128, complex128) {
	return t, 1
}

// EarlyBailout resolves parameters inside the main cardioid and the
// period-2 bulb without iterating. The fixed (resp. two-cycle) point and
// its multiplier are known in closed form; the internal potential is the
// log of the distance to the attractor, measured in multiplier-decay
// units, which matches what the iterated period detector would converge
// to.
func (Mandelbrot) EarlyBailout(_, c complex128) (OrbitResult, bool) {
	fourC := 4 * c

	// Main cardioid: |1 - sqrt(1-4c)| < 1.
	y2 := imag(fourC) * imag(fourC)
	temp := real(fourC) - 1
	muNorm2 := temp*temp + y2
	if muNorm2*(muNorm2*0.25+temp) < y2 {
		multiplier := 1 - cmplx.Sqrt(1-fourC)
		fixed := 0.5 * multiplier
		initDist := DistSqr(c, fixed)
		potential := logBase(initDist, cmplx.Abs(multiplier))
		return OrbitResult{
			Kind:       ResultKnownPotential,
			Period:     1,
			Multiplier: multiplier,
			Potential:  potential,
			FinalError: knownPotentialError,
			Phase:      -1,
		}, true
	}

	// Period-2 bulb: |4c + 4| < 1.
	mu2 := fourC + 4
	if NormSqr(mu2) < 1 {
		fixed := -0.5 - 0.5*cmplx.Sqrt(-fourC-3)
		initDist := DistSqr(c, fixed)
		potential := 2 * logBase(initDist, cmplx.Abs(mu2))
		return OrbitResult{
			Kind:       ResultKnownPotential,
			Period:     2,
			Multiplier: mu2,
			Potential:  potential,
			FinalError: knownPotentialError,
			Phase:      -1,
		}, true
	}

	return OrbitResult{}, false
}

// knownPotentialError stands in for the detection residual of orbits that
// never iterated.
const knownPotentialError = 1e-6

// maxCenterPeriod caps the parameter-plane cycle catalog: the critical
// orbit polynomial has degree 2^(p-1).
const maxCenterPeriod = 9

// Cycles returns the centers of the hyperbolic components of period
// dividing period: the roots in c of the critical orbit polynomial
// f_c^p(0), built by coefficient arithmetic and solved numerically.
// Periods beyond the catalog cap return nil.
func (Mandelbrot) Cycles(period int) []complex128 {
	if period < 1 || period > maxCenterPeriod {
		return nil
	}
	return poly.Roots(criticalOrbitPoly(period))
}

// criticalOrbitPoly expands f_c^p(0) as a polynomial in c:
// P_1 = c, P_{n+1} = P_n^2 + c.
func criticalOrbitPoly(period int) poly.Polynomial {
	p := poly.Polynomial{0, 1}
	for n := 1; n < period; n++ {
		p = p.Mul(p).Add(poly.Polynomial{0, 1})
	}
	return p
}

// CyclesDynamical returns the points of period dividing period under
// z^2 + c. Periods 1 and 2 are closed forms; 3 and 4 solve the expanded
// dynatomic polynomials. Higher periods return nil.
func (Mandelbrot) CyclesDynamical(c complex128, period int) []complex128 {
	switch period {
	case 1:
		u := cmplx.Sqrt(1 - 4*c)
		return []complex128{0.5 * (1 + u), 0.5 * (1 - u)}
	case 2:
		u := cmplx.Sqrt(-3 - 4*c)
		return []complex128{0.5 * (-1 + u), -0.5 * (1 + u)}
	case 3:
		c2 := c * c
		return poly.Roots(poly.Polynomial{
			1 + c + (2+c)*c2,
			1 + 2*c + c2,
			1 + 3*(c+c2),
			1 + 2*c,
			1 + 3*c,
			1,
			1,
		})
	case 4:
		c2 := c * c
		return poly.Roots(poly.Polynomial{
			1 + c2*horner(c, 2, 3, 3, 3, 1),
			c * horner(c, 2, 1, 2, 1),
			c * horner(c, 1, 5, 6, 12, 6),
			1 + 4*c2*(1+c),
			c * horner(c, 4, 3, 18, 15),
			c * horner(c, 2, 6),
			1 + c2*(12+20*c),
			4 * c,
			3*c + 15*c2,
			1,
			6 * c,
			0,
			1,
		})
	default:
		return nil
	}
}

// horner evaluates a polynomial in z with the given ascending
// coefficients.
func horner(z complex128, coeffs ...complex128) complex128 {
	var acc complex128
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*z + coeffs[i]
	}
	return acc
}

// Multibrot is the parameter plane of the unicritical family z^d + c.
// It exercises the configurable local degree of the smooth potential:
// escape bands of z^d + c only line up when the potential correction is
// taken base d.
type Multibrot struct {
	degree int
}

// NewMultibrot returns the degree-d unicritical parameter plane.
// Degrees below 2 are raised to 2.
func NewMultibrot(degree int) Multibrot {
	if degree < 2 {
		degree = 2
	}
	return Multibrot{degree: degree}
}

func (m Multibrot) Name() string { return fmt.Sprintf("Multibrot(%d)", m.degree) }

func (m Multibrot) Map(z, c complex128) complex128 {
	return pow(z, m.degree) + c
}

func (m Multibrot) MapAndDerivative(z, c complex128) (complex128, complex128) {
	w := pow(z, m.degree-1)
	return w*z + c, complex(float64(m.degree), 0) * w
}

func (Multibrot) Start(_, _ complex128) complex128 { return 0 }

func (Multibrot) CriticalPoints(complex128) []complex128 { return []complex128{0} }

func (Multibrot) EscapeRadius() float64 { return 1e10 }

func (m Multibrot) DegreeReal() float64 { return float64(m.degree) }

func (m Multibrot) Degree() int { return m.degree }

func (Multibrot) EscapingPeriod() int { return 1 }

func (Multibrot) EscapingPhase() int { return 1 }

func (Multibrot) DefaultBounds() Bounds { return CenteredSquare(1.6) }

func (m Multibrot) Gradient(z, c complex128) (f, dfdz, dfdc complex128) {
	w := pow(z, m.degree-1)
	return w*z + c, complex(float64(m.degree), 0) * w, 1
}

func (Multibrot) StartGradient(_, _ complex128) (z0, dz0dt, dz0dc complex128) {
	return 0, 0, 0
}

func (Multibrot) ParamMapAndDerivative(t complex128) (complex128, complex128) {
	return t, 1
}

// pow raises z to a small positive integer power by repeated squaring.
// Avoids the cmplx.Pow log/exp round trip in the hot loop.
func pow(z complex128, n int) complex128 {
	result := complex128(1)
	for n > 0 {
		if n&1 == 1 {
			result *= z
		}
		z *= z
		n >>= 1
	}
	return result
}

// Julia is the dynamical plane of another family at a frozen parameter:
// the selection coordinate becomes the starting point and the parameter
// is constant. It wraps any Family, so every parameter plane doubles as
// a Julia set explorer.
type Julia struct {
	fam Family
	c   complex128
}

// NewJulia returns the dynamical plane of f at parameter c.
func NewJulia(f Family, c complex128) Julia {
	return Julia{fam: f, c: c}
}

// Param returns the frozen parameter.
func (j Julia) Param() complex128 { return j.c }

func (j Julia) Name() string {
	return fmt.Sprintf("Julia(%s, %g)", j.fam.Name(), j.c)
}

func (j Julia) Map(z, c complex128) complex128 { return j.fam.Map(z, c) }

func (j Julia) MapAndDerivative(z, c complex128) (complex128, complex128) {
	return j.fam.MapAndDerivative(z, c)
}

// Start returns the selection itself: in a dynamical plane every pixel
// seeds its own orbit.
func (Julia) Start(t, _ complex128) complex128 { return t }

func (j Julia) CriticalPoints(c complex128) []complex128 {
	return j.fam.CriticalPoints(c)
}

// ParamMap ignores the selection; the parameter is frozen.
func (j Julia) ParamMap(complex128) complex128 { return j.c }

func (j Julia) EscapeRadius() float64 { return familyEscapeRadius(j.fam) }

func (j Julia) DegreeReal() float64 { return familyDegree(j.fam) }

func (j Julia) DefaultBounds() Bounds {
	r := 1.1 * math.Max(2, cmplx.Abs(j.c))
	return Square(r, 0)
}

func (j Julia) Gradient(z, c complex128) (f, dfdz, dfdc complex128) {
	if g, ok := j.fam.(Gradienter); ok {
		return g.Gradient(z, c)
	}
	f, dfdz = j.fam.MapAndDerivative(z, c)
	return f, dfdz, 0
}

// StartGradient reflects Start(t) = t: unit derivative in the selection,
// none in the (frozen) parameter.
func (Julia) StartGradient(t, _ complex128) (z0, dz0dt, dz0dc complex128) {
	return t, 1, 0
}

func (j Julia) ParamMapAndDerivative(complex128) (complex128, complex128) {
	return j.c, 0
}

func (j Julia) Degree() int {
	if d, ok := j.fam.(InfinityDegree); ok {
		return d.Degree()
	}
	return int(math.Round(familyDegree(j.fam)))
}

func (j Julia) EscapingPeriod() int {
	if d, ok := j.fam.(InfinityDegree); ok {
		return d.EscapingPeriod()
	}
	return 1
}

// EscapingPhase is 0 in a dynamical plane: a large starting point is
// already large.
func (Julia) EscapingPhase() int { return 0 }

// CyclesDynamical delegates to the wrapped family's catalog at the frozen
// parameter.
func (j Julia) CyclesDynamical(_ complex128, period int) []complex128 {
	if cs, ok := j.fam.(CycleSource); ok {
		return cs.CyclesDynamical(j.c, period)
	}
	return nil
}

// Cycles in a dynamical plane are the dynamical cycles themselves.
func (j Julia) Cycles(period int) []complex128 {
	return j.CyclesDynamical(j.c, period)
}
