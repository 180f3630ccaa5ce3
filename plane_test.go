package dynamo

import (
	"math"
	"testing"
)

func TestPlanePointAtCorners(t *testing.T) {
	p := NewPlane(100, 50, NewBounds(-2, 2, -1, 1))

	tests := []struct {
		name string
		x, y int
		want complex128
	}{
		{"top left", 0, 0, complex(-2, 1)},
		{"one pixel right", 1, 0, complex(-1.96, 1)},
		{"one pixel down", 0, 1, complex(-2, 0.96)},
		{"center", 50, 25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.PointAt(tt.x, tt.y)
			if math.Abs(real(got-tt.want)) > 1e-12 || math.Abs(imag(got-tt.want)) > 1e-12 {
				t.Errorf("PointAt(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPlaneLocateRoundTrip(t *testing.T) {
	p := NewPlane(64, 64, CenteredSquare(2))
	for _, px := range []struct{ x, y int }{{0, 0}, {7, 41}, {63, 63}, {32, 32}} {
		z := p.PointAt(px.x, px.y)
		x, y, ok := p.Locate(z)
		if !ok {
			t.Fatalf("Locate(PointAt(%d, %d)) out of bounds", px.x, px.y)
		}
		if x != px.x || y != px.y {
			t.Errorf("round trip (%d, %d) -> (%d, %d)", px.x, px.y, x, y)
		}
	}

	if _, _, ok := p.Locate(complex(5, 0)); ok {
		t.Error("Locate accepted a point outside the bounds")
	}
}

func TestPlaneZoom(t *testing.T) {
	p := NewPlane(100, 100, CenteredSquare(2))
	base := complex(0.5, -0.5)

	zoomed := p.Zoom(0.5, base)
	if !closeTo(zoomed.Bounds.Area(), p.Bounds.Area()/4, 1e-12) {
		t.Errorf("area after half zoom = %g, want %g", zoomed.Bounds.Area(), p.Bounds.Area()/4)
	}
	// The anchor point stays at the same relative position.
	if !zoomed.Bounds.Contains(base) {
		t.Error("zoom anchor left the view")
	}

	back := zoomed.Zoom(2, base)
	if !closeTo(back.Bounds.MinX, p.Bounds.MinX, 1e-12) || !closeTo(back.Bounds.MaxY, p.Bounds.MaxY, 1e-12) {
		t.Errorf("zoom out did not restore bounds: %v vs %v", back.Bounds, p.Bounds)
	}
}

func TestPlaneShiftAndRecenter(t *testing.T) {
	p := NewPlane(80, 60, NewBounds(-2, 2, -1.5, 1.5))

	shifted := p.Shift(complex(1, -0.5))
	if shifted.Bounds.Center() != complex(1, -0.5) {
		t.Errorf("center after shift = %v, want (1, -0.5)", shifted.Bounds.Center())
	}

	rec := p.Recenter(complex(-0.75, 0.1))
	if c := rec.Bounds.Center(); math.Abs(real(c)+0.75) > 1e-12 || math.Abs(imag(c)-0.1) > 1e-12 {
		t.Errorf("center after recenter = %v, want (-0.75, 0.1)", c)
	}
	if !closeTo(rec.Bounds.Area(), p.Bounds.Area(), 1e-12) {
		t.Error("recenter changed the zoom level")
	}
}

func TestPlaneInferredDimensions(t *testing.T) {
	// Height inferred from a 2:1 bounds aspect ratio.
	p := NewPlane(200, 0, NewBounds(-2, 2, -1, 1))
	if p.Height != 100 {
		t.Errorf("inferred height = %d, want 100", p.Height)
	}
	p = NewPlane(0, 100, NewBounds(-2, 2, -1, 1))
	if p.Width != 200 {
		t.Errorf("inferred width = %d, want 200", p.Width)
	}

	w := p.WithWidth(400)
	if w.Width != 400 || w.Height != 200 {
		t.Errorf("WithWidth(400) = %dx%d, want 400x200", w.Width, w.Height)
	}
}

func TestPlaneValid(t *testing.T) {
	tests := []struct {
		name  string
		plane Plane
		want  bool
	}{
		{"ok", NewPlane(10, 10, CenteredSquare(1)), true},
		{"zero size", Plane{Bounds: CenteredSquare(1)}, false},
		{"inverted bounds", NewPlane(10, 10, NewBounds(1, -1, 0, 1)), false},
		{"nan bounds", NewPlane(10, 10, NewBounds(math.NaN(), 1, 0, 1)), false},
		{"infinite bounds", NewPlane(10, 10, NewBounds(math.Inf(-1), 1, 0, 1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plane.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func closeTo(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}
