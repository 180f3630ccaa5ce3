package dynamo

// Family describes one parametrized family of complex dynamical maps.
//
// A Family must be pure: implementations hold no mutable state, so a single
// instance is shared read-only by every render worker without
// synchronization. The renderer resolves the parameter for a pixel exactly
// once (via ParamMap, when implemented) before entering the iteration loop.
//
// Frontend script compilers satisfy this interface with [FuncFamily];
// the built-in profiles implement it directly.
type Family interface {
	// Name identifies the family in logs and window titles.
	Name() string

	// Map applies one iteration step z -> f(z, c).
	Map(z, c complex128) complex128

	// MapAndDerivative returns f(z, c) together with df/dz.
	// Fused because the cycle-detection walk needs both per step.
	MapAndDerivative(z, c complex128) (f, df complex128)

	// Start returns the initial orbit point for a selection t and
	// parameter c. Parameter planes ignore t in favor of a marked
	// critical point; dynamical planes return t itself.
	Start(t, c complex128) complex128

	// CriticalPoints lists the critical points of f(., c).
	CriticalPoints(c complex128) []complex128
}

// ParamMapper maps the pixel's selection coordinate to the family
// parameter. Families without it use the selection directly, so the
// identity map never costs an interface call in the hot loop.
type ParamMapper interface {
	ParamMap(t complex128) complex128
}

// BoundsProvider supplies the view shown before any navigation.
type BoundsProvider interface {
	DefaultBounds() Bounds
}

// Selector supplies an initial selection coordinate, used by frontends to
// seed the Julia pane before the user picks a point.
type Selector interface {
	DefaultSelection() complex128
}

// Escaper overrides the orbit evaluator's escape test defaults.
// EscapeRadius is compared against |z|; DegreeReal is the local degree
// used in the smooth potential formula.
type Escaper interface {
	EscapeRadius() float64
	DegreeReal() float64
}

// EarlyEscaper short-circuits orbits whose outcome is known in closed form,
// e.g. parameters inside the main cardioid of the Mandelbrot set. ok is
// false when the orbit must be iterated normally.
type EarlyEscaper interface {
	EarlyBailout(t, c complex128) (OrbitResult, bool)
}

// Gradienter exposes the derivative data needed to continue curves through
// the iterated map: the one-step gradient with respect to both z and c,
// the start point's gradient with respect to the selection, and the
// parameter map's derivative. Required for ray tracing and Newton searches
// in parameter planes.
type Gradienter interface {
	// Gradient returns f(z, c), df/dz and df/dc.
	Gradient(z, c complex128) (f, dfdz, dfdc complex128)

	// StartGradient returns the start point z0 along with dz0/dt and
	// dz0/dc for selection t and parameter c.
	StartGradient(t, c complex128) (z0, dz0dt, dz0dc complex128)

	// ParamMapAndDerivative returns the parameter for selection t and
	// its derivative dc/dt.
	ParamMapAndDerivative(t complex128) (c, dcdt complex128)
}

// InfinityDegree describes the self-return map at infinity, consumed by
// the ray tracer when stepping target potentials.
type InfinityDegree interface {
	// Degree is the topological degree of the return map at infinity.
	Degree() int

	// EscapingPeriod is the period of the cycle at infinity.
	EscapingPeriod() int

	// EscapingPhase is the number of iterations before a large parameter
	// produces a large orbit value. Almost always 0 or 1.
	EscapingPhase() int
}

// CycleSource provides closed-form periodic point data for annotation
// overlays, bypassing the generic polynomial solve.
type CycleSource interface {
	// Cycles returns representatives of parameter-plane cycles of the
	// given period (e.g. hyperbolic component centers). Empty when no
	// closed form is known.
	Cycles(period int) []complex128

	// CyclesDynamical returns the points of period dividing the given
	// period in the dynamical plane of parameter c. Empty when no
	// closed form is known.
	CyclesDynamical(c complex128, period int) []complex128
}

// MinIterProvider raises the iteration floor before cycle detection may
// trigger. Families with near-parabolic dynamics use it to suppress false
// periodicity hits from slowly escaping orbits.
type MinIterProvider interface {
	MinIter() int
}

// paramMap resolves the selection-to-parameter map, defaulting to identity.
func paramMap(f Family, t complex128) complex128 {
	if pm, ok := f.(ParamMapper); ok {
		return pm.ParamMap(t)
	}
	return t
}

// familyEscapeRadius returns the family's escape radius in |z| units.
func familyEscapeRadius(f Family) float64 {
	if e, ok := f.(Escaper); ok {
		return e.EscapeRadius()
	}
	return DefaultEscapeRadius
}

// familyDegree returns the local degree for potential smoothing.
func familyDegree(f Family) float64 {
	if e, ok := f.(Escaper); ok {
		return e.DegreeReal()
	}
	return 2
}

func familyMinIter(f Family) int {
	if m, ok := f.(MinIterProvider); ok {
		return m.MinIter()
	}
	return 0
}

// FuncFamily is a Family assembled from closures. Script frontends compile
// user-defined dynamics down to one of these and hand it to the core; tests
// use it for one-off maps.
//
// MapFn and StartFn are required. DerivFn, CritFn and ParamFn are optional;
// a missing DerivFn falls back to a central finite difference, which is
// adequate for coloring but too noisy for ray tracing.
type FuncFamily struct {
	FamilyName string
	MapFn      func(z, c complex128) complex128
	DerivFn    func(z, c complex128) complex128
	StartFn    func(t, c complex128) complex128
	CritFn     func(c complex128) []complex128
	ParamFn    func(t complex128) complex128

	// Radius and LocalDegree override the escape defaults when non-zero.
	Radius      float64
	LocalDegree float64

	// ViewBounds overrides the default view when valid.
	ViewBounds Bounds
}

const diffStep = 1e-7

func (f *FuncFamily) Name() string {
	if f.FamilyName == "" {
		return "custom"
	}
	return f.FamilyName
}

func (f *FuncFamily) Map(z, c complex128) complex128 { return f.MapFn(z, c) }

func (f *FuncFamily) MapAndDerivative(z, c complex128) (complex128, complex128) {
	if f.DerivFn != nil {
		return f.MapFn(z, c), f.DerivFn(z, c)
	}
	h := complex(diffStep, 0)
	df := (f.MapFn(z+h, c) - f.MapFn(z-h, c)) / (2 * h)
	return f.MapFn(z, c), df
}

func (f *FuncFamily) Start(t, c complex128) complex128 { return f.StartFn(t, c) }

func (f *FuncFamily) CriticalPoints(c complex128) []complex128 {
	if f.CritFn == nil {
		return nil
	}
	return f.CritFn(c)
}

func (f *FuncFamily) ParamMap(t complex128) complex128 {
	if f.ParamFn == nil {
		return t
	}
	return f.ParamFn(t)
}

func (f *FuncFamily) EscapeRadius() float64 {
	if f.Radius > 0 {
		return f.Radius
	}
	return DefaultEscapeRadius
}

func (f *FuncFamily) DegreeReal() float64 {
	if f.LocalDegree != 0 {
		return f.LocalDegree
	}
	return 2
}

func (f *FuncFamily) DefaultBounds() Bounds {
	if f.ViewBounds.Valid() {
		return f.ViewBounds
	}
	return CenteredSquare(2.2)
}
