package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// cycleMatchTolerance is the squared distance within which two cycle
// points are considered the same root, and within which a forward orbit
// counts as having returned. Loose enough to absorb the residual of a
// numerically solved root after one cycle of iteration.
const cycleMatchTolerance = 1e-12

// ErrNoCycleData is returned when a family provides neither gradient data
// for Newton continuation nor a closed-form cycle catalog to fall back on.
var ErrNoCycleData = errors.New("dynamo: family provides no cycle data")

// CyclePoint is one representative of a periodic cycle, tagged with its
// minimal period and the cycle multiplier (the chain-rule product of
// derivatives around the cycle). |Multiplier| < 1 marks an attracting
// cycle.
type CyclePoint struct {
	Point      complex128
	Period     int
	Multiplier complex128
}

// Cycle returns the full orbit of the cycle point under f at parameter c.
func (cp CyclePoint) Cycle(f Family, c complex128) []complex128 {
	orbit := make([]complex128, cp.Period)
	z := cp.Point
	for i := range orbit {
		orbit[i] = z
		z = f.Map(z, c)
	}
	return orbit
}

// PeriodicPoints returns one entry per point of exact period period under
// f at parameter c, deduplicated and tagged with multipliers.
//
// Families with a closed-form catalog (CycleSource) are solved through
// it; the catalog lists points of period dividing period, so roots whose
// minimal period is a proper divisor are filtered out here. Families
// without a catalog return nil.
func PeriodicPoints(f Family, c complex128, period int) []CyclePoint {
	cs, ok := f.(CycleSource)
	if !ok || period < 1 {
		return nil
	}
	return classifyCycles(f, c, cs.CyclesDynamical(c, period), period)
}

// Centers returns the parameter-plane cycle representatives of exact
// period period (for Mandelbrot-like planes, the hyperbolic component
// centers), deduplicated against lower periods via the critical orbit.
func Centers(f Family, period int) []CyclePoint {
	cs, ok := f.(CycleSource)
	if !ok || period < 1 {
		return nil
	}

	candidates := cs.Cycles(period)
	out := make([]CyclePoint, 0, len(candidates))
	for _, t := range candidates {
		if !isFiniteC(t) || containsPoint(out, t) {
			continue
		}
		cp, ok := classifyParameter(f, t, period)
		if ok {
			out = append(out, cp)
		}
	}
	return out
}

// classifyCycles filters a candidate list down to points of exact period
// period, deduplicates within tolerance and accumulates multipliers.
func classifyCycles(f Family, c complex128, candidates []complex128, period int) []CyclePoint {
	out := make([]CyclePoint, 0, len(candidates))
	for _, z := range candidates {
		if !isFiniteC(z) || containsPoint(out, z) {
			continue
		}

		minimal, mult, ok := minimalPeriod(f, z, c, period)
		if !ok || minimal != period {
			continue
		}
		out = append(out, CyclePoint{Point: z, Period: period, Multiplier: mult})
	}
	return out
}

// classifyParameter verifies that the marked orbit at parameter t has
// exact period period and tags the cycle multiplier.
func classifyParameter(f Family, t complex128, period int) (CyclePoint, bool) {
	c := paramMap(f, t)
	z0 := f.Start(t, c)
	minimal, mult, ok := minimalPeriod(f, z0, c, period)
	if !ok || minimal != period {
		return CyclePoint{}, false
	}
	return CyclePoint{Point: t, Period: period, Multiplier: mult}, true
}

// minimalPeriod walks the orbit of z for at most period steps and returns
// the first return time within tolerance, with the multiplier accumulated
// up to that point. ok is false when the orbit never returns, meaning the
// candidate root was spurious.
func minimalPeriod(f Family, z0, c complex128, period int) (int, complex128, bool) {
	z := z0
	mult := complex128(1)
	for i := 1; i <= period; i++ {
		var dz complex128
		z, dz = f.MapAndDerivative(z, c)
		mult *= dz
		if DistSqr(z, z0) <= cycleMatchTolerance {
			return i, mult, true
		}
	}
	return 0, 0, false
}

func containsPoint(pts []CyclePoint, z complex128) bool {
	for _, p := range pts {
		if DistSqr(p.Point, z) <= cycleMatchTolerance {
			return true
		}
	}
	return false
}

// OrbitSchema names a preperiodic orbit type: Preperiod iterations of
// approach followed by a cycle of length Period. A purely periodic orbit
// has Preperiod 0.
type OrbitSchema struct {
	Preperiod int
	Period    int
}

func (s OrbitSchema) String() string {
	if s.Preperiod == 0 {
		return fmt.Sprintf("period %d", s.Period)
	}
	return fmt.Sprintf("preperiod %d, period %d", s.Preperiod, s.Period)
}

// FindNearbyPeriodic locates a parameter near guess whose marked orbit
// has the given schema, by Newton continuation on the dynatomic equation.
//
// The objective is the product over unitary divisors m of the period of
// (f^(m+k)(z0) - f^k(z0))^mu(n/m), whose zeros are parameters of exact
// period n and preperiod k; the Moebius exponents divide out cycles of
// lower period so continuation cannot converge to them. Requires
// gradient data (Gradienter). When Newton diverges and the family has a
// closed-form catalog, the nearest catalog entry of the right period is
// returned instead as the full-solve fallback.
func FindNearbyPeriodic(f Family, guess complex128, schema OrbitSchema) (complex128, error) {
	if schema.Period < 1 {
		return 0, fmt.Errorf("%w: period %d", ErrInvalidRequest, schema.Period)
	}

	g, hasGradient := f.(Gradienter)
	if hasGradient {
		z, _, _, err := findRootNewton(dynatomicObjective(g, schema), guess)
		if err == nil {
			return z, nil
		}
		Logger().Warn("periodic continuation diverged",
			"family", f.Name(),
			"schema", schema.String(),
			"guess", fmt.Sprint(guess))
	}

	// Full-solve fallback.
	if cs, ok := f.(CycleSource); ok && schema.Preperiod == 0 {
		if best, ok := nearestOf(cs.Cycles(schema.Period), guess); ok {
			return best, nil
		}
	}
	if !hasGradient {
		return 0, ErrNoCycleData
	}
	return 0, ErrNoConvergence
}

// dynatomicObjective builds the Newton objective for FindNearbyPeriodic:
// value and t-derivative of the unitary-divisor product at selection t.
func dynatomicObjective(g Gradienter, schema OrbitSchema) evalFunc {
	n, k := schema.Period, schema.Preperiod

	return func(t complex128) (complex128, complex128) {
		c, dcdt := g.ParamMapAndDerivative(t)
		z, dzdt, dzdc := g.StartGradient(t, c)
		dzdt += dzdc * dcdt

		step := func(w, dwdt complex128) (complex128, complex128) {
			f, dfdz, dfdc := g.Gradient(w, c)
			return f, dwdt*dfdz + dfdc*dcdt
		}

		// Preperiodic part: advance to f^k(z0), remembering f^(k-1).
		var zk1, zk1dt complex128
		if k > 0 {
			for i := 0; i < k-1; i++ {
				z, dzdt = step(z, dzdt)
			}
			zk1, zk1dt = z, dzdt
			z, dzdt = step(z, dzdt)
		}

		// Periodic part: collect (f^(m+k) - f^k)^mu(n/m) factors at each
		// unitary divisor m of n.
		value := complex128(1)
		deriv := complex128(0)
		mulFactor := func(v, dv complex128) {
			value, deriv = value*v, value*dv+deriv*v
		}

		w, dwdt := z, dzdt
		for i := 1; i < n; i++ {
			w, dwdt = step(w, dwdt)
			if n%i != 0 {
				continue
			}
			switch moebius(n / i) {
			case 1:
				mulFactor(w-z, dwdt-dzdt)
			case -1:
				inv := 1 / (w - z)
				mulFactor(inv, (dzdt-dwdt)*inv*inv)
			}
		}

		// Preperiod exactness: divide by f^(k+n-1) - f^(k-1) so orbits
		// that enter the cycle one step early are not zeros.
		if k > 0 {
			inv := 1 / (w - zk1)
			mulFactor(inv, (zk1dt-dwdt)*inv*inv)
		}

		w, dwdt = step(w, dwdt)
		mulFactor(w-z, dwdt-dzdt)

		return value, deriv
	}
}

// nearestOf returns the finite element of pts closest to guess.
func nearestOf(pts []complex128, guess complex128) (complex128, bool) {
	best, bestDist := complex128(0), math.Inf(1)
	for _, p := range pts {
		if !isFiniteC(p) {
			continue
		}
		if d := DistSqr(p, guess); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// moebius returns the Moebius function of n: 0 when n has a squared
// prime factor, otherwise (-1)^(number of prime factors).
func moebius(n int) int {
	if n < 1 {
		return 0
	}
	result := 1
	for p := 2; p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		n /= p
		if n%p == 0 {
			return 0
		}
		result = -result
	}
	if n > 1 {
		result = -result
	}
	return result
}
