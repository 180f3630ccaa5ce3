package dynamo

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Stop anchors a color at a position along one palette cycle.
// Offsets are in [0, 1), measured in cycle units.
type Stop struct {
	Offset float64
	Color  RGBA
}

// Palette maps smooth potential values to exterior colors and carries the
// reserved colors for everything that never escaped.
//
// The stops describe one color cycle. A potential value is divided by
// CycleLength, shifted by Phase and wrapped to [0, 1) before stop
// interpolation, so the palette repeats along the potential axis and the
// seam between the last and first stop blends smoothly.
//
// Interior is the fill for bounded orbits (and for detected cycles under
// the Solid interior mode). Indeterminate is the reserved sentinel for
// orbits the evaluator could not classify within its budget; Unknown
// marks cells that were never evaluated. Both sentinels are distinct from
// any stop-derived color so an unconverged region is visible as such.
type Palette struct {
	Stops       []Stop
	CycleLength float64
	Phase       float64

	Interior      RGBA
	Indeterminate RGBA
	Unknown       RGBA
}

// NewPalette builds a palette over the given stops with the standard
// reserved colors. Stops may be listed in any order.
func NewPalette(cycleLength float64, stops ...Stop) Palette {
	return Palette{
		Stops:         sortStops(stops),
		CycleLength:   cycleLength,
		Interior:      Black,
		Indeterminate: Brown,
		Unknown:       Gray,
	}
}

// WhitePalette is the default grayscale palette: white at whole-number
// potentials, black at half cycles, black interior.
func WhitePalette() Palette {
	return NewPalette(8,
		Stop{Offset: 0, Color: White},
		Stop{Offset: 0.5, Color: Black},
	)
}

// BlackPalette is the inverted grayscale palette: black at whole-number
// potentials, white interior.
func BlackPalette() Palette {
	p := NewPalette(8,
		Stop{Offset: 0, Color: Black},
		Stop{Offset: 0.5, Color: White},
	)
	p.Interior = White
	return p
}

// RandomPalette draws a palette with random stop hues, cycle length and
// phase. The cycle length follows a chi-squared distribution with 7.5
// degrees of freedom, which favors readable band widths while allowing
// occasional long ramps. The caller owns the generator and its seed, so
// palettes are reproducible.
func RandomPalette(rng *rand.Rand) Palette {
	const numStops = 6

	stops := make([]Stop, numStops)
	for i := range stops {
		stops[i] = Stop{
			Offset: float64(i) / numStops,
			Color: HSV(
				rng.Float64(),
				0.4+0.6*rng.Float64(),
				0.3+0.7*rng.Float64(),
			),
		}
	}

	p := NewPalette(math.Max(chiSquared(rng, 7.5), 1), stops...)
	p.Phase = rng.Float64()
	return p
}

// ScaleCycle returns the palette with its cycle length multiplied by
// factor. Values > 1 widen the color bands.
func (p Palette) ScaleCycle(factor float64) Palette {
	p.CycleLength *= factor
	return p
}

// ShiftPhase returns the palette with its phase advanced by delta cycles.
func (p Palette) ShiftPhase(delta float64) Palette {
	p.Phase += delta
	return p
}

// Map returns the exterior color for a smooth potential value.
func (p Palette) Map(potential float64) RGBA {
	return colorAt(sortStops(p.Stops), p.position(potential))
}

// position converts a potential value to a cycle position in [0, 1).
// Applied to the raw potential, so offsetting the potential by a whole
// number of cycles lands on the same color.
func (p Palette) position(potential float64) float64 {
	cycle := p.CycleLength
	if cycle <= 0 {
		cycle = 1
	}
	pos := potential/cycle + p.Phase
	pos -= math.Floor(pos)
	if pos < 0 || math.IsNaN(pos) {
		return 0
	}
	return pos
}

// sortStops sorts color stops by offset.
func sortStops(stops []Stop) []Stop {
	if len(stops) == 0 {
		return stops
	}

	// Copy so the caller's palette is left untouched.
	sorted := make([]Stop, len(stops))
	copy(sorted, stops)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	return sorted
}

// colorAt returns the interpolated color at cycle position t in [0, 1).
// Stops must be sorted. The interpolation wraps: positions before the
// first stop and after the last blend across the cycle seam.
func colorAt(stops []Stop, t float64) RGBA {
	n := len(stops)
	if n == 0 {
		return RGBA{}
	}
	if n == 1 {
		return stops[0].Color
	}

	idx := sort.Search(n, func(i int) bool {
		return stops[i].Offset >= t
	})

	var lo, hi Stop
	switch idx {
	case 0:
		// Before the first stop: the last stop wraps in from offset-1.
		lo, hi = stops[n-1], stops[0]
		lo.Offset--
	case n:
		// Past the last stop: the first stop wraps out at offset+1.
		lo, hi = stops[n-1], stops[0]
		hi.Offset++
	default:
		lo, hi = stops[idx-1], stops[idx]
	}

	span := hi.Offset - lo.Offset
	if span <= 0 {
		return lo.Color
	}
	return lo.Color.Lerp(hi.Color, (t-lo.Offset)/span)
}

// chiSquared draws from a chi-squared distribution with k degrees of
// freedom (k >= 2/3), via the Marsaglia-Tsang gamma sampler with the
// chi-squared scale of 2.
func chiSquared(rng *rand.Rand, k float64) float64 {
	d := k/2 - 1.0/3
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x || math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return 2 * d * v
		}
	}
}
