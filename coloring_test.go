package dynamo

import (
	"fmt"
	"testing"
)

func TestColorizerTotal(t *testing.T) {
	// Every result kind colors under every interior mode, and the
	// sentinels stay distinguishable from each other.
	results := map[string]OrbitResult{
		"unknown":   {},
		"escaped":   {Kind: ResultEscaped, Iters: 12, Potential: 11.4},
		"periodic":  {Kind: ResultPeriodic, Iters: 80, Preperiod: 20, Period: 3, Multiplier: 0.4i, FinalError: 1e-16},
		"known":     {Kind: ResultKnownPotential, Potential: 0.7, Period: 1, Multiplier: 0.3},
		"bounded":   {Kind: ResultBounded, Iters: 1024},
		"nan guard": {Kind: ResultPeriodic, Period: 1, FinalError: 0},
	}

	modes := []InteriorMode{
		InteriorPeriodMultiplier, InteriorSolid, InteriorPeriod,
		InteriorMultiplier, InteriorPreperiod, InteriorPreperiodPeriod,
		InteriorPotential, InteriorPotentialPeriod,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			c := NewColorizer(WhitePalette(), WithInteriorMode(mode))
			for name, res := range results {
				got := c.Color(res)
				for _, comp := range [4]float64{got.R, got.G, got.B, got.A} {
					if !isFinite(comp) || comp < 0 || comp > 1 {
						t.Errorf("%s: component out of range in %v", name, got)
					}
				}
			}
		})
	}
}

func TestColorizerSentinels(t *testing.T) {
	c := NewColorizer(WhitePalette())

	bounded := c.Color(OrbitResult{Kind: ResultBounded})
	unknown := c.Color(OrbitResult{Kind: ResultUnknown})
	if bounded == unknown {
		t.Error("indeterminate and unknown share a color")
	}
	if bounded != WhitePalette().Indeterminate {
		t.Errorf("bounded = %v, want the indeterminate sentinel", bounded)
	}

	solid := NewColorizer(WhitePalette(), WithInteriorMode(InteriorSolid))
	got := solid.Color(OrbitResult{Kind: ResultPeriodic, Period: 5, Multiplier: 0.9})
	if got != WhitePalette().Interior {
		t.Errorf("solid interior = %v, want %v", got, WhitePalette().Interior)
	}
}

func TestColorizerEscapedUsesPalette(t *testing.T) {
	p := WhitePalette()
	c := NewColorizer(p)
	for _, pot := range []float64{0.5, 3.2, 100.9} {
		if got, want := c.Color(OrbitResult{Kind: ResultEscaped, Potential: pot}), p.Map(pot); got != want {
			t.Errorf("Color(escaped %g) = %v, want palette %v", pot, got, want)
		}
	}
}

func TestColorizerPeriodHue(t *testing.T) {
	// Period keys the hue: distinct small periods get distinct colors,
	// and the hue wraps past NumColors.
	c := NewColorizer(WhitePalette(), WithInteriorMode(InteriorPeriod))
	color := func(period int) RGBA {
		return c.Color(OrbitResult{Kind: ResultPeriodic, Period: period, Multiplier: 0.5})
	}

	seen := map[RGBA]int{}
	for per := 1; per <= 7; per++ {
		got := color(per)
		if prev, dup := seen[got]; dup {
			t.Errorf("periods %d and %d share color %v", prev, per, got)
		}
		seen[got] = per
	}
	if a, b := color(1), color(8); !nearColor(a, b, 1e-12) {
		t.Errorf("hue did not wrap: period 1 %v vs period 8 %v", a, b)
	}
}

func TestColorizerMultiplierShading(t *testing.T) {
	// Under the default mode a superattracting cycle is darker than a
	// weakly attracting one of the same period.
	c := NewColorizer(WhitePalette())
	dark := c.Color(OrbitResult{Kind: ResultPeriodic, Period: 2, Multiplier: 0})
	bright := c.Color(OrbitResult{Kind: ResultPeriodic, Period: 2, Multiplier: 0.95})

	if luma(dark) >= luma(bright) {
		t.Errorf("superattracting not darker: %v vs %v", dark, bright)
	}
	if dark != Black {
		t.Errorf("multiplier 0 = %v, want black", dark)
	}
}

func TestInternalPotentialRegimes(t *testing.T) {
	const tol = 1e-14

	tests := []struct {
		name     string
		err      float64
		multNorm float64
		finite   bool
	}{
		{"superattracting", 1e-20, 0, true},
		{"attracting", 1e-16, 0.5, true},
		{"parabolic", 1e-15, 1, true},
		{"zero error collapses", 0, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := internalPotential(tt.err, tol, tt.multNorm, 2)
			if isFinite(got) != tt.finite {
				t.Errorf("internalPotential = %g, finite = %v", got, !tt.finite)
			}
		})
	}
}

func TestInteriorModeString(t *testing.T) {
	for m := InteriorPeriodMultiplier; m <= InteriorPotentialPeriod; m++ {
		if s := m.String(); s == "invalid" || s == "" {
			t.Errorf("mode %d has no name", m)
		}
	}
	if got := InteriorMode(99).String(); got != "invalid" {
		t.Errorf("out-of-range mode = %q, want invalid", got)
	}
}

func luma(c RGBA) float64 { return c.R + c.G + c.B }

func ExampleColorizer() {
	c := NewColorizer(WhitePalette(), WithInteriorMode(InteriorSolid))
	col := c.Color(OrbitResult{Kind: ResultPeriodic, Period: 1})
	fmt.Printf("%.0f %.0f %.0f\n", col.R, col.G, col.B)
	// Output: 0 0 0
}
