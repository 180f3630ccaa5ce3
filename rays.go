package dynamo

import (
	"math"
	"math/cmplx"
)

// Angle is an exact rational angle, measured in full turns and reduced
// mod 1. Rays are traced at rational angles because angle doubling is
// then exact: a float angle drifts measurably over a couple hundred
// doublings, a rational never does.
type Angle struct {
	Num, Den int64
}

// NewAngle returns num/den turns reduced to lowest terms in [0, 1).
// A zero denominator yields the zero angle.
func NewAngle(num, den int64) Angle {
	if den == 0 {
		return Angle{Num: 0, Den: 1}
	}
	if den < 0 {
		num, den = -num, -den
	}
	num %= den
	if num < 0 {
		num += den
	}
	g := gcd64(num, den)
	return Angle{Num: num / g, Den: den / g}
}

// MulInt returns the angle multiplied by k, mod 1. Tracing steps outward
// by one iterate multiply the target angle by the map's degree.
func (a Angle) MulInt(k int64) Angle {
	return NewAngle(a.Num*k, a.Den)
}

// Float returns the angle in turns.
func (a Angle) Float() float64 {
	return float64(a.Num) / float64(a.Den)
}

// Circle returns the point at angle a on the unit circle.
func (a Angle) Circle() complex128 {
	return unitCircle(a.Float())
}

func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// Curve tracing defaults, matching the tuning of the interactive
// explorer this core was extracted for.
const (
	DefaultRayDepth         = 200
	DefaultRaySharpness     = 25
	DefaultContourSteps     = 20000
	DefaultContourStepSize  = 1e-2
	defaultRayEscapeRadius  = 16.0
	rayBasePointRadius      = 65.0
	rayLandingPixelFraction = 0.03
)

// CurveOption configures ray and equipotential tracing.
type CurveOption func(*curveOptions)

type curveOptions struct {
	depth        int
	sharpness    int
	maxSteps     int
	stepSize     float64
	returnRadius float64
	orbit        OrbitParams
}

func defaultCurveOptions() curveOptions {
	return curveOptions{
		depth:     DefaultRayDepth,
		sharpness: DefaultRaySharpness,
		maxSteps:  DefaultContourSteps,
		stepSize:  DefaultContourStepSize,
	}
}

// WithRayDepth sets how many doubling levels a ray is continued inward.
// Each level adds one iterate to the Newton objective, so cost grows
// linearly and precision loss grows with it; deep values trade length of
// the traced ray against tail accuracy.
func WithRayDepth(n int) CurveOption {
	return func(o *curveOptions) {
		if n > 0 {
			o.depth = n
		}
	}
}

// WithRaySharpness sets the number of potential sub-steps per doubling
// level. Higher is smoother and slower.
func WithRaySharpness(n int) CurveOption {
	return func(o *curveOptions) {
		if n > 0 {
			o.sharpness = n
		}
	}
}

// WithContourSteps caps the number of predictor steps of an
// equipotential trace.
func WithContourSteps(n int) CurveOption {
	return func(o *curveOptions) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithContourStepSize sets the RK4 step of the equipotential follower in
// complex-plane units.
func WithContourStepSize(h float64) CurveOption {
	return func(o *curveOptions) {
		if h > 0 {
			o.stepSize = h
		}
	}
}

// WithReturnRadius sets the loop-closure radius of the equipotential
// follower. Zero derives it from the step size.
func WithReturnRadius(r float64) CurveOption {
	return func(o *curveOptions) {
		if r > 0 {
			o.returnRadius = r
		}
	}
}

// WithCurveOrbitParams sets the orbit parameters used when a trace needs
// to evaluate the potential function (equipotentials). Zero fields keep
// the defaults.
func WithCurveOrbitParams(p OrbitParams) CurveOption {
	return func(o *curveOptions) {
		o.orbit = p
	}
}

// TraceRay approximates the external ray at the given angle as an
// ordered point list from far outside the escape radius inward toward
// the landing point.
//
// The ray is parametrized by potential: at doubling level k the target
// values step down geometrically through sharpness sub-levels, and each
// target is reached by Newton iteration through k iterates of the map
// (the iterated map's gradient is accumulated by the chain rule, which is
// why the family must implement Gradienter). The trace ends when the
// distance estimate falls under a pixel, the depth budget runs out, or
// Newton stops converging; in every case the partial curve traced so far
// is returned, possibly empty only when the family is unsuitable.
// Inward extension is numerically unstable near the landing point, so a
// shortened ray is the expected outcome for many angles, not a failure.
func TraceRay(f Family, plane Plane, angle Angle, opts ...CurveOption) []complex128 {
	o := defaultCurveOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g, ok := f.(Gradienter)
	if !ok {
		return nil
	}

	degReal := math.Abs(familyDegree(f))
	if math.IsNaN(degReal) || degReal <= 1 {
		return nil
	}
	degLog2 := math.Log2(degReal)
	escapeRadiusLog2 := math.Log2(defaultRayEscapeRadius) * degReal

	degree, escapingPeriod, escapingPhase := int64(2), 1, 1
	if d, ok := f.(InfinityDegree); ok {
		degree = int64(d.Degree())
		escapingPeriod = d.EscapingPeriod()
		escapingPhase = d.EscapingPhase()
	}

	pixelWidth := plane.PixelWidth() * rayLandingPixelFraction
	tol := float64(plane.Width) * 1e-8

	// Arbitrary starting guess far enough out to escape immediately.
	basePoint := complex(rayBasePointRadius, 0) * angle.Circle()
	targetAngle := angle
	points := make([]complex128, 0, 1+o.depth*o.sharpness)
	// Seed with the exterior base point so a ray whose very first Newton
	// step fails still comes back as a curve, not an empty slice.
	points = append(points, basePoint)

	for k := 0; k < o.depth; k++ {
		numIters := k*escapingPeriod + escapingPhase
		fkdfk := iteratedGradient(g, numIters)

		tCurr := points[len(points)-1]

		v := targetAngle.Circle()
		for j := 0; j < o.sharpness; j++ {
			// Sub-target potentials decay as degree^(-j/sharpness).
			u := escapeRadiusLog2 * math.Exp2(-float64(j)*degLog2/float64(o.sharpness))
			target := complex(math.Exp2(u), 0) * v

			sol, fk, dfk, err := findTargetNewton(fkdfk, tCurr, target, tol)
			switch err {
			case nil:
				if isNaNC(sol) {
					return trimRayTail(points)
				}
				tCurr = sol
				points = append(points, tCurr)

				// Koebe-style distance estimate to the ray's landing
				// continuum; below a pixel there is nothing left to draw.
				fkNorm := cmplx.Abs(fk)
				dist := 2 * fkNorm * logBase(fkNorm, degReal) / cmplx.Abs(dfk)
				if dist < pixelWidth {
					return trimRayTail(points)
				}
			case ErrNaN:
				return trimRayTail(points)
			default:
				// Non-convergence at this sub-target: try the next one
				// from the same point.
			}
		}
		targetAngle = targetAngle.MulInt(degree)
	}

	Logger().Warn("ray depth exhausted before landing",
		"family", f.Name(),
		"angle", angle.Float(),
		"points", len(points))
	return trimRayTail(points)
}

// iteratedGradient returns f^n at a selection together with its
// t-derivative, resolving parameter and start gradients once per call.
func iteratedGradient(g Gradienter, n int) evalFunc {
	return func(t complex128) (complex128, complex128) {
		c, dcdt := g.ParamMapAndDerivative(t)
		z, dzdt, dzdc := g.StartGradient(t, c)
		dzdt += dzdc * dcdt

		for i := 0; i < n; i++ {
			f, dfdz, dfdc := g.Gradient(z, c)
			dzdt = dzdt*dfdz + dfdc*dcdt
			z = f
		}
		return z, dzdt
	}
}

// trimRayTail pops trailing points while successive spacing grows. The
// innermost Newton solutions wander once the iterated map loses
// precision; monotone spacing decay is what a healthy ray tail looks
// like. L1 norms preserve precision for the tiny differences involved.
func trimRayTail(points []complex128) []complex128 {
	for len(points) >= 3 {
		n := len(points)
		dist0 := l1Norm(points[n-1] - points[n-2])
		dist1 := l1Norm(points[n-2] - points[n-3])
		if dist0 <= dist1 {
			break
		}
		points = points[:n-1]
	}
	return points
}

// TraceEquipotential approximates the level curve of the potential
// function through the selection t0 as an ordered point list.
//
// The potential and its gradient come from the orbit of t0 itself: the
// exterior Green's function when t0 escapes, the internal linearizing
// potential when it is attracted to a cycle. The curve is then followed
// by an RK4 predictor along i*G/conj(grad G) (the Hamiltonian flow of
// the potential, which moves along the level set) with a Newton
// corrector back onto it after every step. Tracing stops on loop closure
// back at the seed, on the step cap, or when the potential evaluation
// breaks down; the partial curve is returned in all cases. A nil result
// means the potential is undefined at t0 itself (e.g. an indeterminate
// orbit or a family without gradient data).
func TraceEquipotential(f Family, t0 complex128, opts ...CurveOption) []complex128 {
	o := defaultCurveOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.returnRadius <= 0 {
		o.returnRadius = o.stepSize
	}

	po, ok := newPotentialOrbit(f, o.orbit)
	if !ok {
		return nil
	}
	eval := func(t complex128) (float64, complex128, bool) {
		g, grad, ok := po.run(t)
		if !ok || grad == 0 {
			return 0, 0, false
		}
		return g, grad, true
	}

	target, _, ok := eval(t0)
	if !ok {
		return nil
	}

	lc := levelCurve{
		eval:         eval,
		target:       target,
		seed:         t0,
		point:        t0,
		stepSize:     o.stepSize,
		returnRadius: o.returnRadius * o.returnRadius,
	}
	return lc.trace(o.maxSteps)
}

// levelCurve follows one level set of a scalar field with complex
// gradient data.
type levelCurve struct {
	eval   func(complex128) (float64, complex128, bool)
	target float64
	seed   complex128
	point  complex128

	stepSize     float64
	returnRadius float64
	exitedSeed   bool
}

// stepVector is the tangent flow i*G/conj(grad G): perpendicular to the
// gradient, scaled by the distance-estimate factor so the parametrization
// slows down near the boundary where the level sets crowd together.
func (lc *levelCurve) stepVector(t complex128) (complex128, bool) {
	g, grad, ok := lc.eval(t)
	if !ok {
		return 0, false
	}
	return 1i * complex(g, 0) / cmplx.Conj(grad), true
}

// rkStep returns the RK4 displacement from the current point.
func (lc *levelCurve) rkStep() (complex128, bool) {
	t := lc.point
	h := complex(lc.stepSize, 0)

	k0, ok := lc.stepVector(t)
	if !ok {
		return 0, false
	}
	k0 *= h
	k1, ok := lc.stepVector(t + 0.5*k0)
	if !ok {
		return 0, false
	}
	k1 *= h
	k2, ok := lc.stepVector(t + 0.5*k1)
	if !ok {
		return 0, false
	}
	k2 *= h
	k3, ok := lc.stepVector(t + k2)
	if !ok {
		return 0, false
	}
	k3 *= h

	return (k0 + 2*(k1+k2) + k3) / 6, true
}

// correct projects the point back onto the level set with one Newton
// step along the gradient direction. A correction larger than the step
// size means the predictor left the corrector's basin; the trace stops
// rather than jump to an unrelated level curve.
func (lc *levelCurve) correct() bool {
	g, grad, ok := lc.eval(lc.point)
	if !ok {
		return false
	}
	correction := complex(lc.target-g, 0) / cmplx.Conj(grad)
	if NormSqr(correction) > lc.stepSize*lc.stepSize {
		return false
	}
	lc.point += correction
	return true
}

type curveStepOutcome int

const (
	curveStepOK curveStepOutcome = iota
	curveStepFailed
	curveStepLooped
)

func (lc *levelCurve) step() curveStepOutcome {
	dt, ok := lc.rkStep()
	if !ok {
		return curveStepFailed
	}
	lc.point -= dt
	if !lc.correct() || isNaNC(lc.point) {
		return curveStepFailed
	}
	if DistSqr(lc.point, lc.seed) < lc.returnRadius {
		return curveStepLooped
	}
	return curveStepOK
}

func (lc *levelCurve) trace(maxSteps int) []complex128 {
	points := []complex128{lc.point}

	for k := 0; k < maxSteps; k++ {
		switch lc.step() {
		case curveStepOK:
			lc.exitedSeed = true
			points = append(points, lc.point)
		case curveStepLooped:
			if lc.exitedSeed {
				// Back at the seed after a full loop: walk the gap shut.
				return lc.closeLoop(points)
			}
			// Still leaving the seed's neighborhood.
			points = append(points, lc.point)
		case curveStepFailed:
			return points
		}
	}
	return points
}

// closeLoop keeps stepping while the distance to the seed shrinks, so
// the curve ends as close to its starting point as the step size allows.
func (lc *levelCurve) closeLoop(points []complex128) []complex128 {
	dist := math.Inf(1)
	newDist := DistSqr(lc.point, lc.seed)
	for newDist < dist {
		dist = newDist
		if lc.step() == curveStepFailed {
			break
		}
		points = append(points, lc.point)
		newDist = DistSqr(lc.point, lc.seed)
	}
	return points
}
