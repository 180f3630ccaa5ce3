package dynamo

import (
	"math"
	"math/cmplx"
)

// potentialOrbit iterates an orbit together with its derivative with
// respect to the selection coordinate. It evaluates Green's function and
// its gradient at a point, the data the equipotential follower and ray
// continuation consume.
type potentialOrbit struct {
	o *orbit
	g Gradienter

	selection complex128
	c, dcdt   complex128

	zSlow, zFast       complex128
	dzdtSlow, dzdtFast complex128
	iter               int
}

func newPotentialOrbit(f Family, params OrbitParams) (*potentialOrbit, bool) {
	g, ok := f.(Gradienter)
	if !ok {
		return nil, false
	}
	return &potentialOrbit{o: newOrbit(f, params), g: g}, true
}

func (p *potentialOrbit) reset(t complex128) {
	c, dcdt := p.g.ParamMapAndDerivative(t)
	z, dzdt, dzdc := p.g.StartGradient(t, c)
	dzdt += dzdc * dcdt

	p.selection = t
	p.c, p.dcdt = c, dcdt
	p.zSlow, p.zFast = z, z
	p.dzdtSlow, p.dzdtFast = dzdt, dzdt
	p.iter = 0
}

func (p *potentialOrbit) updateSlow() {
	f, dfdz, dfdc := p.g.Gradient(p.zSlow, p.c)
	p.dzdtSlow = dfdz*p.dzdtSlow + dfdc*p.dcdt
	p.zSlow = f
}

func (p *potentialOrbit) updateFast() {
	f, dfdz, dfdc := p.g.Gradient(p.zFast, p.c)
	p.dzdtFast = dfdz*p.dzdtFast + dfdc*p.dcdt
	p.zFast = f
}

// run evaluates the potential at selection t. Escaping points yield the
// exterior Green's function; points attracted to a cycle yield the
// linearizing-coordinate potential of the basin. ok is false when the
// orbit resolves neither within the iteration budget.
func (p *potentialOrbit) run(t complex128) (green float64, grad complex128, ok bool) {
	p.reset(t)

	if res, stop := p.o.stopCheck(p.zFast, 0); stop {
		return p.encode(res)
	}
	for {
		p.iter++
		if p.iter&1 == 1 {
			p.updateSlow()
			p.updateFast()
			if res, stop := p.o.stopCheck(p.zFast, p.iter); stop {
				return p.encode(res)
			}
		} else {
			p.updateFast()
			if res, stop := p.o.stopCheck(p.zFast, p.iter); stop {
				return p.encode(res)
			}
			if p.iter < p.o.params.MinIter {
				continue
			}
			if DistSqr(p.zFast, p.zSlow) < p.o.params.PeriodicityTolerance {
				if period, mult, found := p.o.resolvePeriod(p.zFast, p.c, p.iter); found {
					return p.encodePeriodic(period, mult)
				}
			}
		}
	}
}

// encode converts an escape outcome to the exterior Green's function.
// G composes with the map as G(f(z)) = d*G(z), so the raw boundary value
// is rescaled by d^-n to the potential at the starting point.
func (p *potentialOrbit) encode(res OrbitResult) (float64, complex128, bool) {
	if res.Kind != ResultEscaped {
		return 0, 0, false
	}
	rescale := math.Pow(p.o.params.Degree, -float64(res.Iters))
	z := p.zFast
	green := math.Log(cmplx.Abs(z)) * rescale
	grad := cmplx.Conj(p.dzdtFast/z) * complex(rescale, 0)
	if !isFinite(green) || !isFiniteC(grad) {
		return 0, 0, false
	}
	return green, grad, true
}

func (p *potentialOrbit) encodePeriodic(period int, mult complex128) (float64, complex128, bool) {
	multNorm := cmplx.Abs(mult)
	if multNorm <= superattractingThreshold {
		return p.bottcher(period)
	}
	return p.koenigs(period, multNorm)
}

// koenigs measures the geometric decay toward an attracting cycle: the
// displacement after one period shrinks by the multiplier, so its log,
// normalized by log|mu|, is a potential for the basin.
func (p *potentialOrbit) koenigs(period int, multNorm float64) (float64, complex128, bool) {
	tol := complex(p.o.params.PeriodicityTolerance, 0)

	z := p.zFast
	dzdt := p.dzdtFast
	for i := 0; i < period; i++ {
		p.updateFast()
	}

	errC := (p.zFast - z) / tol
	derrdt := (p.dzdtFast - dzdt) / tol

	logRate := -math.Log(multNorm)
	green := math.Log(cmplx.Abs(errC)) / logRate
	grad := -cmplx.Conj(derrdt/errC) / complex(logRate, 0)

	if !isFinite(green) || !isFiniteC(grad) {
		return 0, 0, false
	}
	return green, grad, true
}

// bottcher handles the superattracting case, where the decay toward the
// cycle is doubly exponential and the Koenigs coordinate degenerates.
// The orbit is re-run against a copy of itself offset by one period; the
// iteration count until the pair collapses within tolerance plays the
// role of an escape time.
func (p *potentialOrbit) bottcher(period int) (float64, complex128, bool) {
	p.reset(p.selection)
	for i := 0; i < period; i++ {
		p.updateFast()
	}
	for DistSqr(p.zFast, p.zSlow) > p.o.params.PeriodicityTolerance {
		if p.iter > p.o.params.MaxIter {
			return 0, 0, false
		}
		p.updateSlow()
		p.updateFast()
		p.iter++
	}

	errC := p.zFast - p.zSlow
	derrdt := p.dzdtFast - p.dzdtSlow

	normErr := NormSqr(errC)
	logNormErr := math.Log(normErr)
	logTol := math.Log(p.o.params.PeriodicityTolerance)

	phi := math.Log(logNormErr/logTol) + float64(p.iter)*math.Ln2
	grad := errC * cmplx.Conj(derrdt/complex(logNormErr*normErr, 0))

	if !isFinite(phi) || !isFiniteC(grad) {
		return 0, 0, false
	}
	return phi, grad, true
}

// ExternalPotential evaluates the potential function and its gradient at
// selection t: the exterior Green's function for escaping points, or the
// internal linearizing potential for points attracted to a cycle. ok is
// false when the family provides no gradient data or the orbit stays
// unresolved within the iteration budget.
func ExternalPotential(f Family, t complex128, params OrbitParams) (green float64, grad complex128, ok bool) {
	p, ok := newPotentialOrbit(f, params)
	if !ok {
		return 0, 0, false
	}
	return p.run(t)
}
