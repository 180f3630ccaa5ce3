package dynamo

import "math"

// Default escape-time settings. EscapeRadius is measured in |z|; families
// override it through the [Escaper] capability.
const (
	DefaultMaxIter      = 1024
	DefaultEscapeRadius = 1e6
)

// periodicityScale relates the view area to the cycle-detection tolerance.
// Shrinks automatically as the user zooms in, so deep zooms keep resolving
// cycles that a fixed tolerance would conflate.
const periodicityScale = 1e-14

// ResultKind discriminates the outcome of an orbit evaluation.
type ResultKind uint8

const (
	// ResultUnknown is the zero value; no evaluation has happened.
	ResultUnknown ResultKind = iota

	// ResultEscaped marks orbits that left the escape radius.
	ResultEscaped

	// ResultPeriodic marks orbits that settled into a detected cycle.
	ResultPeriodic

	// ResultKnownPotential marks interior points resolved in closed form
	// without iterating, with an analytically known internal potential.
	ResultKnownPotential

	// ResultBounded marks orbits that neither escaped nor resolved a
	// cycle within the iteration budget. Indeterminate, not interior.
	ResultBounded
)

func (k ResultKind) String() string {
	switch k {
	case ResultEscaped:
		return "escaped"
	case ResultPeriodic:
		return "periodic"
	case ResultKnownPotential:
		return "known-potential"
	case ResultBounded:
		return "bounded"
	default:
		return "unknown"
	}
}

// OrbitResult is the per-point outcome of escape-time evaluation.
// It is a flat struct rather than an interface so a render buffer is one
// contiguous allocation; which fields are meaningful depends on Kind.
type OrbitResult struct {
	Kind ResultKind

	// Iters is the iteration count at termination.
	Iters int

	// Potential is the smooth iteration count for escaped points, or the
	// internal potential for known-potential points.
	Potential float64

	// Phase is the escape phase mod the period of the cycle at infinity.
	// Negative when not applicable.
	Phase int

	// Preperiod, Period and Multiplier describe a detected cycle.
	Preperiod  int
	Period     int
	Multiplier complex128

	// FinalError is the squared distance between the checkpoints that
	// triggered cycle detection.
	FinalError float64
}

// OrbitParams bundles the tunable constants of the evaluator. All
// tolerances are configuration, not contract; the zero value of a field
// means "use the default".
type OrbitParams struct {
	// MaxIter bounds the iteration count per point.
	MaxIter int

	// MinIter suppresses escape and cycle checks for the first
	// iterations. Raised for families with parabolic dynamics.
	MinIter int

	// EscapeRadius in |z| units. An orbit point on or outside the
	// circle counts as escaped.
	EscapeRadius float64

	// PeriodicityTolerance bounds the squared checkpoint distance that
	// triggers cycle detection.
	PeriodicityTolerance float64

	// Degree is the local degree used in the smooth potential formula.
	Degree float64

	// EscapingPeriod is the period of the cycle at infinity. 1 for
	// every polynomial family.
	EscapingPeriod int
}

// ResolveOrbitParams fills in the defaults for family f rendered over
// plane. The periodicity tolerance scales with the view area.
func ResolveOrbitParams(f Family, plane Plane) OrbitParams {
	return OrbitParams{
		MaxIter:              DefaultMaxIter,
		MinIter:              familyMinIter(f),
		EscapeRadius:         familyEscapeRadius(f),
		PeriodicityTolerance: plane.Bounds.Area() * periodicityScale,
		Degree:               familyDegree(f),
		EscapingPeriod:       escapingPeriod(f),
	}
}

func escapingPeriod(f Family) int {
	if d, ok := f.(InfinityDegree); ok {
		return d.EscapingPeriod()
	}
	return 1
}

// normalized returns params with zero fields replaced by defaults.
func (p OrbitParams) normalized() OrbitParams {
	if p.MaxIter <= 0 {
		p.MaxIter = DefaultMaxIter
	}
	if p.EscapeRadius <= 0 {
		p.EscapeRadius = DefaultEscapeRadius
	}
	if p.PeriodicityTolerance <= 0 {
		p.PeriodicityTolerance = periodicityScale
	}
	if p.Degree == 0 {
		p.Degree = 2
	}
	if p.EscapingPeriod <= 0 {
		p.EscapingPeriod = 1
	}
	return p
}

// orbit runs the tortoise-and-hare evaluation for one family and parameter.
// It is reused across the pixels of a render band to keep the hot loop free
// of interface lookups and repeated parameter resolution.
type orbit struct {
	f      Family
	params OrbitParams

	normBound float64 // escape radius squared, compared against |z|^2
}

func newOrbit(f Family, params OrbitParams) *orbit {
	params = params.normalized()
	return &orbit{
		f:         f,
		params:    params,
		normBound: params.EscapeRadius * params.EscapeRadius,
	}
}

// Evaluate runs the escape-time algorithm for selection t.
//
// The slow checkpoint advances on odd iterations only; when the fast point
// returns within the periodicity tolerance of the slow one, a bounded
// forward walk resolves the minimal period and accumulates the multiplier
// by the chain rule. Orbits reaching MaxIter without escaping or cycling
// report ResultBounded.
//
// NaN or Inf appearing mid-iteration terminates the orbit as escaped at
// that iteration with a whole-number potential; invalid values never reach
// the result.
func Evaluate(f Family, t complex128, params OrbitParams) OrbitResult {
	return newOrbit(f, params).run(t)
}

func (o *orbit) run(t complex128) OrbitResult {
	c := paramMap(o.f, t)
	z := o.f.Start(t, c)

	if ee, ok := o.f.(EarlyEscaper); ok {
		if res, hit := ee.EarlyBailout(t, c); hit {
			return res
		}
	}

	slow, fast := z, z

	if res, stop := o.stopCheck(fast, 0); stop {
		return res
	}

	for iter := 1; ; iter++ {
		if iter&1 == 1 {
			slow = o.f.Map(slow, c)
			fast = o.f.Map(fast, c)
			if res, stop := o.stopCheck(fast, iter); stop {
				return res
			}
		} else {
			fast = o.f.Map(fast, c)
			if res, stop := o.stopCheck(fast, iter); stop {
				return res
			}
			if iter < o.params.MinIter {
				continue
			}
			errSqr := DistSqr(fast, slow)
			if errSqr < o.params.PeriodicityTolerance {
				if period, mult, ok := o.resolvePeriod(fast, c, iter); ok {
					return OrbitResult{
						Kind:       ResultPeriodic,
						Iters:      iter,
						Preperiod:  iter,
						Period:     period,
						Multiplier: mult,
						FinalError: errSqr,
						Phase:      -1,
					}
				}
			}
		}
	}
}

// stopCheck applies the escape and iteration-budget tests.
func (o *orbit) stopCheck(z complex128, iter int) (OrbitResult, bool) {
	if iter < o.params.MinIter {
		return OrbitResult{}, false
	}
	if iter >= o.params.MaxIter {
		return OrbitResult{Kind: ResultBounded, Iters: iter, Phase: -1}, true
	}
	r := NormSqr(z)
	if math.IsNaN(r) {
		return OrbitResult{
			Kind:      ResultEscaped,
			Iters:     iter,
			Potential: float64(iter),
			Phase:     -1,
		}, true
	}
	if r >= o.normBound {
		return o.encodeEscape(z, iter), true
	}
	return OrbitResult{}, false
}

// encodeEscape computes the smooth iteration count
//
//	n + p * log_d(log R^2 / log |z|^2)
//
// where d is the local degree and p the escaping period. The correction
// term is negative, so the potential decreases continuously toward the
// boundary and bands render without stair-stepping.
func (o *orbit) encodeEscape(z complex128, iter int) OrbitResult {
	u := math.Log(o.normBound)
	v := math.Log(NormSqr(z))
	potential := float64(iter)
	if isFinite(v) && v != 0 {
		residual := logBase(u/v, o.params.Degree)
		if isFinite(residual) {
			potential += residual * float64(o.params.EscapingPeriod)
		}
	}
	return OrbitResult{
		Kind:      ResultEscaped,
		Iters:     iter,
		Potential: potential,
		Phase:     escapePhase(iter, o.params.EscapingPeriod),
	}
}

// escapePhase returns iter mod the escaping period, or -1 when the period
// is trivial and phase coloring does not apply.
func escapePhase(iter, escapingPeriod int) int {
	if escapingPeriod <= 1 {
		return -1
	}
	return iter % escapingPeriod
}

// resolvePeriod walks forward from z until the orbit returns within the
// relaxed tolerance, accumulating the multiplier. patience bounds the walk;
// a miss means the proximity hit was a false positive and iteration
// continues.
func (o *orbit) resolvePeriod(z0, c complex128, patience int) (period int, mult complex128, ok bool) {
	tol := math.Pow(o.params.PeriodicityTolerance, 0.75)
	z := z0
	mult = 1
	for i := 1; i <= patience; i++ {
		var dz complex128
		z, dz = o.f.MapAndDerivative(z, c)
		mult *= dz
		if DistSqr(z, z0) <= tol {
			return i, mult, true
		}
	}
	return 0, 0, false
}

// Trajectory iterates the plain orbit of selection t, recording every point
// up to escape or the iteration budget. Frontends draw this for the
// point-inspection overlay; the returned result carries the termination
// state of the final point.
func Trajectory(f Family, t complex128, params OrbitParams) ([]complex128, OrbitResult) {
	o := newOrbit(f, params)
	c := paramMap(f, t)
	z := f.Start(t, c)

	points := make([]complex128, 0, 64)
	points = append(points, z)

	if res, stop := o.stopCheck(z, 0); stop {
		return points, res
	}
	for iter := 1; ; iter++ {
		z = f.Map(z, c)
		points = append(points, z)
		if res, stop := o.stopCheck(z, iter); stop {
			return points, res
		}
	}
}
