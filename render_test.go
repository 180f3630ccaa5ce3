package dynamo

import (
	"errors"
	"sync"
	"testing"
)

func renderBuffer(t *testing.T, r *Renderer, f Family, plane Plane) *Buffer {
	t.Helper()
	buf, err := r.Render(f, plane, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf
}

func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	// Worker count is a throughput knob, never a semantic one: every
	// pixel must be bit-identical whatever the parallelism.
	f := NewMandelbrot()
	plane := NewPlane(64, 48, f.DefaultBounds())

	ref := NewRenderer(WithWorkers(1), WithMaxIter(300))
	defer ref.Close()
	want := renderBuffer(t, ref, f, plane)

	for _, workers := range []int{2, 3, 8} {
		r := NewRenderer(WithWorkers(workers), WithMaxIter(300))
		got := renderBuffer(t, r, f, plane)
		r.Close()

		for y := 0; y < plane.Height; y++ {
			for x := 0; x < plane.Width; x++ {
				if got.At(x, y) != want.At(x, y) {
					t.Fatalf("workers=%d: pixel (%d,%d) differs: %+v vs %+v",
						workers, x, y, got.At(x, y), want.At(x, y))
				}
			}
		}
	}
}

func TestRenderValidation(t *testing.T) {
	f := NewMandelbrot()
	good := NewPlane(32, 32, f.DefaultBounds())

	tests := []struct {
		name  string
		opts  []RenderOption
		plane Plane
	}{
		{"zero width", nil, Plane{Height: 32, Bounds: f.DefaultBounds()}},
		{"negative height", nil, Plane{Width: 32, Height: -1, Bounds: f.DefaultBounds()}},
		{"empty bounds", nil, NewPlane(32, 32, NewBounds(1, 1, 0, 1))},
		{"pixel limit", []RenderOption{WithMaxPixels(100)}, good},
		{"iterations above ceiling", []RenderOption{WithIterCeiling(10), WithMaxIter(100)}, good},
		{"escape radius too small", []RenderOption{WithEscapeRadius(0.5)}, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.opts...)
			defer r.Close()
			_, err := r.Render(f, tt.plane, 0)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}

	// A well-formed request on the same renderer still succeeds.
	r := NewRenderer()
	defer r.Close()
	if _, err := r.Render(f, good, 0); err != nil {
		t.Fatalf("valid request: %v", err)
	}
}

func TestRenderGenerations(t *testing.T) {
	f := NewMandelbrot()
	plane := NewPlane(32, 32, f.DefaultBounds())
	r := NewRenderer(WithWorkers(2), WithMaxIter(100))
	defer r.Close()

	first := renderBuffer(t, r, f, plane)
	if r.Stale(first) {
		t.Fatal("fresh buffer reported stale")
	}

	second := renderBuffer(t, r, f, plane)
	if !r.Stale(first) {
		t.Error("superseded buffer not reported stale")
	}
	if r.Stale(second) {
		t.Error("latest buffer reported stale")
	}
	if second.Generation() <= first.Generation() {
		t.Errorf("generations not increasing: %d then %d",
			first.Generation(), second.Generation())
	}
}

func TestRenderSupersededInFlight(t *testing.T) {
	// A render superseded while its bands are still being evaluated must
	// come back tagged stale, so the caller never presents it as current.
	gate := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	slow := &FuncFamily{
		FamilyName: "gated quadratic",
		MapFn: func(z, c complex128) complex128 {
			once.Do(func() {
				close(started)
				<-gate
			})
			return z*z + c
		},
		StartFn: func(t, c complex128) complex128 { return t },
	}

	r := NewRenderer(WithWorkers(2), WithMaxIter(64))
	defer r.Close()
	plane := NewPlane(32, 32, CenteredSquare(2))

	type outcome struct {
		buf *Buffer
		err error
	}
	firstCh := make(chan outcome, 1)
	go func() {
		buf, err := r.Render(slow, plane, 0)
		firstCh <- outcome{buf, err}
	}()

	// Wait until the first render is pinned mid-band, then supersede it.
	// The free worker steals the new bands, so the second render finishes
	// while the first is still blocked.
	<-started
	second := renderBuffer(t, r, quadJulia(complex(-1, 0)), plane)
	if r.Stale(second) {
		t.Fatal("latest buffer reported stale")
	}

	close(gate)
	first := <-firstCh
	if first.err != nil {
		t.Fatalf("superseded Render returned error: %v", first.err)
	}
	if !r.Stale(first.buf) {
		t.Error("buffer superseded in flight not reported stale")
	}
}

func TestRenderPreviewDownscales(t *testing.T) {
	f := NewMandelbrot()
	plane := NewPlane(128, 96, f.DefaultBounds())
	r := NewRenderer(WithPreviewScale(4), WithMaxIter(100))
	defer r.Close()

	buf, err := r.RenderPreview(f, plane, 0)
	if err != nil {
		t.Fatalf("RenderPreview: %v", err)
	}
	if buf.Width() != 32 || buf.Height() != 24 {
		t.Errorf("preview size = %dx%d, want 32x24", buf.Width(), buf.Height())
	}

	// Degenerate planes still yield at least one pixel.
	tiny, err := r.RenderPreview(f, NewPlane(2, 2, f.DefaultBounds()), 0)
	if err != nil {
		t.Fatalf("RenderPreview tiny: %v", err)
	}
	if tiny.Width() < 1 || tiny.Height() < 1 {
		t.Errorf("preview collapsed to %dx%d", tiny.Width(), tiny.Height())
	}
}

func TestRenderResultsAreClassified(t *testing.T) {
	// The standard view contains escaped exterior, early-bailout interior
	// and no unknown pixels.
	f := NewMandelbrot()
	plane := NewPlane(64, 64, f.DefaultBounds())
	r := NewRenderer(WithMaxIter(500))
	defer r.Close()

	buf := renderBuffer(t, r, f, plane)
	counts := map[ResultKind]int{}
	for y := 0; y < plane.Height; y++ {
		for x := 0; x < plane.Width; x++ {
			counts[buf.At(x, y).Kind]++
		}
	}
	if counts[ResultUnknown] != 0 {
		t.Errorf("%d pixels left unevaluated", counts[ResultUnknown])
	}
	if counts[ResultEscaped] == 0 {
		t.Error("no escaped pixels in the default view")
	}
	if counts[ResultKnownPotential] == 0 {
		t.Error("no closed-form interior pixels in the default view")
	}
}

func TestRendererParamsOverrides(t *testing.T) {
	f := NewMandelbrot()
	plane := NewPlane(32, 32, f.DefaultBounds())
	r := NewRenderer(WithMaxIter(777), WithEscapeRadius(32), WithPeriodicityTolerance(1e-9))
	defer r.Close()

	p := r.Params(f, plane)
	if p.MaxIter != 777 {
		t.Errorf("MaxIter = %d, want 777", p.MaxIter)
	}
	if p.EscapeRadius != 32 {
		t.Errorf("EscapeRadius = %g, want 32", p.EscapeRadius)
	}
	if p.PeriodicityTolerance != 1e-9 {
		t.Errorf("PeriodicityTolerance = %g, want 1e-9", p.PeriodicityTolerance)
	}
}
