package dynamo

import (
	"math"
	"math/cmplx"
)

// Interior shading defaults. The tolerance mirrors the evaluator's
// periodicity default; pass the render's resolved value through
// WithInteriorTolerance when it differs.
const (
	DefaultCriticalDegree    = 2.0
	defaultPreperiodFill     = 0.02
	defaultPotentialFill     = 0.01
	superattractingThreshold = 1e-10
	parabolicThreshold       = 1e-5
)

// InteriorMode selects the coloring formula for orbits that settled into
// a detected cycle. The zero value is InteriorPeriodMultiplier.
type InteriorMode int

const (
	// InteriorPeriodMultiplier keys the hue by period and shades by the
	// multiplier magnitude, darkening toward superattracting centers.
	InteriorPeriodMultiplier InteriorMode = iota

	// InteriorSolid fills every cycle with the palette interior color.
	InteriorSolid

	// InteriorPeriod keys the hue by period at full luminosity.
	InteriorPeriod

	// InteriorMultiplier colors continuously from the multiplier alone:
	// hue from arg(mu), luminosity from |mu|.
	InteriorMultiplier

	// InteriorPreperiod shades by the iteration count until cycle
	// lock-in, mapped through the exterior palette.
	InteriorPreperiod

	// InteriorPreperiodPeriod keys the hue by period and shades by the
	// preperiod with a saturating fill.
	InteriorPreperiodPeriod

	// InteriorPotential shades by the linearizing-coordinate potential,
	// the interior analogue of the exterior smooth potential.
	InteriorPotential

	// InteriorPotentialPeriod keys the hue by period and shades by the
	// internal potential, scaled by the multiplier contraction rate.
	InteriorPotentialPeriod
)

func (m InteriorMode) String() string {
	switch m {
	case InteriorPeriodMultiplier:
		return "period-multiplier"
	case InteriorSolid:
		return "solid"
	case InteriorPeriod:
		return "period"
	case InteriorMultiplier:
		return "multiplier"
	case InteriorPreperiod:
		return "preperiod"
	case InteriorPreperiodPeriod:
		return "preperiod-period"
	case InteriorPotential:
		return "potential"
	case InteriorPotentialPeriod:
		return "potential-period"
	default:
		return "invalid"
	}
}

// PeriodPalette assigns a hue to each cycle period, stepping through
// NumColors evenly spaced hues from BaseHue. Periods beyond NumColors
// wrap around the hue circle.
type PeriodPalette struct {
	NumColors  float64
	BaseHue    float64
	Saturation float64
	Luminosity float64
}

// StandardPeriodPalette returns the default seven-hue period palette.
func StandardPeriodPalette() PeriodPalette {
	return PeriodPalette{
		NumColors:  7,
		BaseHue:    0.47,
		Saturation: 0.7,
		Luminosity: 1,
	}
}

// Map returns the color for a period, scaled by a luminosity modifier
// in [0, 1].
func (pp PeriodPalette) Map(period, shade float64) RGBA {
	hue := math.Mod(period/pp.NumColors+pp.BaseHue, 1)
	return HSV(hue, pp.Saturation, pp.Luminosity*shade)
}

// ColorOption configures a Colorizer during creation.
//
// Example:
//
//	c := dynamo.NewColorizer(dynamo.WhitePalette(),
//	    dynamo.WithInteriorMode(dynamo.InteriorPotential),
//	    dynamo.WithInteriorTolerance(params.PeriodicityTolerance))
type ColorOption func(*Colorizer)

// WithInteriorMode selects the interior coloring formula.
func WithInteriorMode(m InteriorMode) ColorOption {
	return func(c *Colorizer) {
		c.mode = m
	}
}

// WithPeriodPalette replaces the period-keyed hue palette.
func WithPeriodPalette(pp PeriodPalette) ColorOption {
	return func(c *Colorizer) {
		c.periods = pp
	}
}

// WithLogPotential compresses the exterior potential logarithmically
// before palette lookup. Evens out band widths at extreme zoom depths at
// the cost of the exact cycle-offset correspondence of the linear scale.
func WithLogPotential(on bool) ColorOption {
	return func(c *Colorizer) {
		c.logPotential = on
	}
}

// WithInteriorTolerance sets the periodicity tolerance used by the
// internal potential formulas. Pass the tolerance the render resolved so
// interior shading stays consistent with cycle detection.
func WithInteriorTolerance(tol float64) ColorOption {
	return func(c *Colorizer) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// WithCriticalDegree sets the local degree of the first-return map at
// the attracting cycle, used by the superattracting potential case.
func WithCriticalDegree(d float64) ColorOption {
	return func(c *Colorizer) {
		if d > 1 {
			c.critDegree = d
		}
	}
}

// WithFillRate overrides the shading fill rate of the preperiod and
// potential interior modes. Zero keeps the per-mode defaults.
func WithFillRate(rate float64) ColorOption {
	return func(c *Colorizer) {
		if rate > 0 {
			c.fillRate = rate
		}
	}
}

// Colorizer maps per-pixel orbit results to colors.
//
// A colorizer captures the palette and interior mode at creation and
// pre-sorts the palette stops, so applying it across a buffer does no
// per-pixel allocation. The mapping is total: every result kind,
// including the zero value of an unevaluated cell, produces a defined
// color. A colorizer is immutable after creation and safe for concurrent
// use; palette edits build a new colorizer.
type Colorizer struct {
	palette Palette
	stops   []Stop
	periods PeriodPalette
	mode    InteriorMode

	logPotential bool
	tolerance    float64
	critDegree   float64
	fillRate     float64
}

// NewColorizer creates a colorizer for the given palette.
func NewColorizer(p Palette, opts ...ColorOption) *Colorizer {
	c := &Colorizer{
		palette:    p,
		stops:      sortStops(p.Stops),
		periods:    StandardPeriodPalette(),
		tolerance:  periodicityScale,
		critDegree: DefaultCriticalDegree,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Palette returns the colorizer's palette.
func (c *Colorizer) Palette() Palette { return c.palette }

// Mode returns the interior coloring mode.
func (c *Colorizer) Mode() InteriorMode { return c.mode }

// Color maps one orbit result to a color.
func (c *Colorizer) Color(res OrbitResult) RGBA {
	switch res.Kind {
	case ResultEscaped:
		return c.mapPotential(res.Potential)
	case ResultPeriodic:
		return c.periodic(res)
	case ResultKnownPotential:
		return c.knownPotential(res)
	case ResultBounded:
		return c.palette.Indeterminate
	default:
		return c.palette.Unknown
	}
}

// mapPotential positions a potential value on the palette cycle and
// interpolates the surrounding stops.
func (c *Colorizer) mapPotential(pot float64) RGBA {
	if c.logPotential {
		pot = math.Log2(pot - 1)
	}
	return colorAt(c.stops, c.palette.position(pot))
}

func (c *Colorizer) periodic(res OrbitResult) RGBA {
	per := float64(res.Period)
	pre := float64(res.Preperiod)
	multNorm := cmplx.Abs(res.Multiplier)

	switch c.mode {
	case InteriorSolid:
		return c.palette.Interior

	case InteriorPeriod:
		return c.periods.Map(per, 1)

	case InteriorPeriodMultiplier:
		return c.periods.Map(per, multNorm)

	case InteriorMultiplier:
		return HSV(cmplx.Phase(res.Multiplier)/(2*math.Pi)+0.5, 1, multNorm)

	case InteriorPreperiod:
		return c.mapPotential(pre * pre / per)

	case InteriorPreperiodPeriod:
		shade := math.Tanh(pre * c.fill(defaultPreperiodFill) / per)
		return c.periods.Map(per, shade)

	case InteriorPotential:
		pot := internalPotential(res.FinalError, c.tolerance, multNorm, c.critDegree)
		val := pre/per - pot
		return c.mapPotential(val * val * per)

	case InteriorPotentialPeriod:
		pot := internalPotential(res.FinalError, c.tolerance, multNorm, c.critDegree)
		val := pre/per - pot
		luma := val * val * per

		rate := 0.1
		if multNorm > superattractingThreshold && math.Abs(1-multNorm) >= parabolicThreshold {
			rate = multiplierColoringRate(multNorm, c.fill(defaultPotentialFill))
		}
		return c.periods.Map(per, math.Tanh(rate*luma))

	default:
		return c.palette.Interior
	}
}

// knownPotential colors interior points whose internal potential was
// resolved in closed form, without an iterated preperiod to key on.
func (c *Colorizer) knownPotential(res OrbitResult) RGBA {
	per := float64(res.Period)
	multNorm := cmplx.Abs(res.Multiplier)
	rescaled := res.Potential * res.Potential / per

	switch c.mode {
	case InteriorSolid:
		return c.palette.Interior

	case InteriorPeriod:
		return c.periods.Map(per, 1)

	case InteriorPeriodMultiplier:
		return c.periods.Map(per, multNorm)

	case InteriorMultiplier:
		return HSV(cmplx.Phase(res.Multiplier)/(2*math.Pi)+0.5, 1, multNorm)

	case InteriorPreperiod:
		return c.mapPotential(math.Floor(rescaled))

	case InteriorPreperiodPeriod:
		shade := math.Tanh(rescaled * c.fill(defaultPreperiodFill))
		return c.periods.Map(per, shade)

	case InteriorPotential:
		return c.mapPotential(rescaled)

	case InteriorPotentialPeriod:
		rate := multiplierColoringRate(multNorm, c.fill(defaultPotentialFill))
		return c.periods.Map(per, math.Tanh(rate*rescaled))

	default:
		return c.palette.Interior
	}
}

func (c *Colorizer) fill(modeDefault float64) float64 {
	if c.fillRate > 0 {
		return c.fillRate
	}
	return modeDefault
}

// internalPotential estimates the linearizing-coordinate potential of a
// point near an attracting cycle from the residual error at detection
// time. Three regimes: superattracting cycles iterate the critical-point
// degree, parabolic cycles converge polynomially, and generic attracting
// cycles converge geometrically at rate |mu|. Non-finite intermediate
// values collapse to a fixed shade.
func internalPotential(err, tol, multNorm, critDegree float64) float64 {
	var potential float64
	switch {
	case multNorm <= superattractingThreshold:
		potential = 2 * logBase(logBase(err, tol), critDegree)
	case math.Abs(1-multNorm) <= parabolicThreshold:
		potential = err / tol
	default:
		potential = logBase(err/tol, multNorm)
	}

	if !isFinite(potential) {
		return 0.2
	}
	return potential
}

// multiplierColoringRate converts a multiplier magnitude to a shading
// rate: slower contraction spreads the shading bands wider.
func multiplierColoringRate(multNorm, fillRate float64) float64 {
	if multNorm > superattractingThreshold {
		return -math.Log2(multNorm) * fillRate
	}
	return 10
}
