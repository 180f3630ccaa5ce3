package dynamo

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"
)

func TestPeriodicPointsFixed(t *testing.T) {
	// z^2 at c = 0 has fixed points 0 (superattracting) and 1
	// (multiplier 2).
	pts := PeriodicPoints(NewMandelbrot(), 0, 1)
	if len(pts) != 2 {
		t.Fatalf("got %d fixed points, want 2", len(pts))
	}
	sort.Slice(pts, func(i, j int) bool { return real(pts[i].Point) < real(pts[j].Point) })

	if cmplx.Abs(pts[0].Point) > 1e-9 || cmplx.Abs(pts[0].Multiplier) > 1e-9 {
		t.Errorf("first fixed point %v mult %v, want 0 with multiplier 0", pts[0].Point, pts[0].Multiplier)
	}
	if cmplx.Abs(pts[1].Point-1) > 1e-9 || cmplx.Abs(pts[1].Multiplier-2) > 1e-9 {
		t.Errorf("second fixed point %v mult %v, want 1 with multiplier 2", pts[1].Point, pts[1].Multiplier)
	}
}

func TestPeriodicPointsTwoCycle(t *testing.T) {
	// The period-2 points of z^2 are the primitive cube roots of unity,
	// each with multiplier 4. The fixed points must not leak in.
	pts := PeriodicPoints(NewMandelbrot(), 0, 2)
	if len(pts) != 2 {
		t.Fatalf("got %d period-2 points, want 2", len(pts))
	}
	for _, cp := range pts {
		if cp.Period != 2 {
			t.Errorf("point %v tagged period %d", cp.Point, cp.Period)
		}
		if math.Abs(cmplx.Abs(cp.Point)-1) > 1e-9 {
			t.Errorf("|%v| = %g, want on the unit circle", cp.Point, cmplx.Abs(cp.Point))
		}
		if math.Abs(cmplx.Abs(cp.Multiplier)-4) > 1e-6 {
			t.Errorf("|multiplier| = %g, want 4", cmplx.Abs(cp.Multiplier))
		}

		orbit := cp.Cycle(NewMandelbrot(), 0)
		if len(orbit) != 2 {
			t.Fatalf("cycle length %d, want 2", len(orbit))
		}
		if DistSqr(orbit[0], orbit[1]) < 1e-6 {
			t.Error("two-cycle collapsed to a fixed point")
		}
	}
}

func TestCenters(t *testing.T) {
	f := NewMandelbrot()

	counts := []struct{ period, want int }{
		{1, 1}, {2, 1}, {3, 3}, {4, 6},
	}
	for _, tt := range counts {
		got := Centers(f, tt.period)
		if len(got) != tt.want {
			t.Errorf("period %d: %d centers, want %d", tt.period, len(got), tt.want)
		}
		for _, cp := range got {
			if cmplx.Abs(cp.Multiplier) > 1e-6 {
				t.Errorf("period %d center %v has |mu| = %g, want superattracting",
					tt.period, cp.Point, cmplx.Abs(cp.Multiplier))
			}
		}
	}

	// The known landmarks: the cusp, the basilica and the airplane.
	if c := Centers(f, 1); cmplx.Abs(c[0].Point) > 1e-9 {
		t.Errorf("period-1 center = %v, want 0", c[0].Point)
	}
	if c := Centers(f, 2); cmplx.Abs(c[0].Point+1) > 1e-9 {
		t.Errorf("period-2 center = %v, want -1", c[0].Point)
	}
	found := false
	for _, cp := range Centers(f, 3) {
		if math.Abs(real(cp.Point)+1.7549) < 1e-3 && math.Abs(imag(cp.Point)) < 1e-6 {
			found = true
		}
	}
	if !found {
		t.Error("airplane center missing from period 3")
	}
}

func TestFindNearbyPeriodic(t *testing.T) {
	f := NewMandelbrot()

	// Newton continuation from a rough guess lands on the airplane.
	got, err := FindNearbyPeriodic(f, complex(-1.8, 0), OrbitSchema{Period: 3})
	if err != nil {
		t.Fatalf("FindNearbyPeriodic: %v", err)
	}
	if math.Abs(real(got)+1.75488) > 1e-4 || math.Abs(imag(got)) > 1e-6 {
		t.Errorf("got %v, want the airplane near -1.75488", got)
	}

	// Period 1 from near the cusp stays at the origin; the Moebius
	// product has no lower periods to divide out.
	got, err = FindNearbyPeriodic(f, complex(0.05, 0.05), OrbitSchema{Period: 1})
	if err != nil {
		t.Fatalf("period 1: %v", err)
	}
	if cmplx.Abs(got) > 1e-6 {
		t.Errorf("period-1 continuation = %v, want 0", got)
	}
}

func TestFindNearbyPeriodicErrors(t *testing.T) {
	if _, err := FindNearbyPeriodic(NewMandelbrot(), 0, OrbitSchema{Period: 0}); err == nil {
		t.Error("period 0 accepted")
	}

	// No gradient data and no catalog: nothing to continue on.
	plain := &FuncFamily{
		MapFn:   func(z, c complex128) complex128 { return z*z + c },
		StartFn: func(t, c complex128) complex128 { return 0 },
	}
	if _, err := FindNearbyPeriodic(plain, 0, OrbitSchema{Period: 2}); err == nil {
		t.Error("family without cycle data accepted")
	}
}

func TestOrbitSchemaString(t *testing.T) {
	if got := (OrbitSchema{Period: 3}).String(); got != "period 3" {
		t.Errorf("String() = %q", got)
	}
	if got := (OrbitSchema{Preperiod: 2, Period: 1}).String(); got != "preperiod 2, period 1" {
		t.Errorf("String() = %q", got)
	}
}

func TestMoebius(t *testing.T) {
	want := map[int]int{
		1: 1, 2: -1, 3: -1, 4: 0, 5: -1, 6: 1,
		8: 0, 9: 0, 10: 1, 12: 0, 30: -1,
	}
	for n, mu := range want {
		if got := moebius(n); got != mu {
			t.Errorf("moebius(%d) = %d, want %d", n, got, mu)
		}
	}
}
