package dynamo

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/DannyStoll1/dynamo/internal/parallel"
)

// Render request limits. Both are configurable per renderer; the caps exist
// so a malformed request fails fast instead of stalling the worker pool.
const (
	DefaultIterCeiling  = 1 << 20
	DefaultMaxPixels    = 1 << 24
	DefaultPreviewScale = 4
)

// ErrInvalidRequest is returned by Render when the request parameters are
// unusable: invalid plane, oversized pixel grid, iteration budget outside
// (0, ceiling], or a non-finite escape radius <= 1.
//
// Check with errors.Is:
//
//	if errors.Is(err, dynamo.ErrInvalidRequest) { ... }
var ErrInvalidRequest = errors.New("dynamo: invalid render request")

// Renderer evaluates escape-time orbits over a pixel plane in parallel.
//
// A renderer owns a fixed worker pool and a monotonically increasing
// generation counter. Every Render call starts a new generation; a buffer
// whose generation is no longer current is stale and should be discarded
// by the caller. In-flight renders observe the counter between row bands
// and skip remaining work once superseded, so a newer request is never
// stuck behind an older one.
//
// Methods are safe for concurrent use. Close releases the worker pool;
// the renderer must not be used afterwards.
type Renderer struct {
	pool       *parallel.WorkerPool
	opts       renderOptions
	generation atomic.Uint64
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts ...RenderOption) *Renderer {
	o := defaultRenderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.previewScale < 1 {
		o.previewScale = 1
	}
	return &Renderer{
		pool: parallel.NewWorkerPool(o.workers),
		opts: o,
	}
}

// Close shuts down the worker pool. Safe to call multiple times.
func (r *Renderer) Close() { r.pool.Close() }

// Workers returns the number of worker goroutines.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Generation reports the id of the most recently started render.
func (r *Renderer) Generation() uint64 { return r.generation.Load() }

// Stale reports whether buf has been superseded by a newer render request
// on this renderer.
func (r *Renderer) Stale(buf *Buffer) bool {
	return buf.Generation() < r.generation.Load()
}

// Params resolves the orbit parameters this renderer uses for family f
// over plane: family and plane defaults overlaid with the renderer's
// option overrides.
func (r *Renderer) Params(f Family, plane Plane) OrbitParams {
	p := ResolveOrbitParams(f, plane)
	p.MaxIter = r.opts.maxIter
	if r.opts.minIter > 0 {
		p.MinIter = r.opts.minIter
	}
	if r.opts.escapeRadius > 0 {
		p.EscapeRadius = r.opts.escapeRadius
	}
	if r.opts.periodicity > 0 {
		p.PeriodicityTolerance = r.opts.periodicity
	}
	return p
}

func (r *Renderer) validate(plane Plane, params OrbitParams) error {
	if !plane.Valid() {
		return fmt.Errorf("%w: unusable plane %v", ErrInvalidRequest, plane)
	}
	if n := plane.PixelCount(); n > r.opts.maxPixels {
		return fmt.Errorf("%w: %d pixels exceeds limit %d", ErrInvalidRequest, n, r.opts.maxPixels)
	}
	if params.MaxIter <= 0 || params.MaxIter > r.opts.iterCeiling {
		return fmt.Errorf("%w: max iterations %d outside (0, %d]", ErrInvalidRequest, params.MaxIter, r.opts.iterCeiling)
	}
	if !isFinite(params.EscapeRadius) || params.EscapeRadius <= 1 {
		return fmt.Errorf("%w: escape radius %v must be finite and > 1", ErrInvalidRequest, params.EscapeRadius)
	}
	return nil
}

// Render evaluates every pixel of plane for family f at parameter t and
// returns the result grid.
//
// The call starts a new generation and blocks until the grid is complete
// or superseded. Identical inputs produce bit-identical buffers regardless
// of worker count. Check Stale on the returned buffer before presenting
// it; a superseded buffer may be partially evaluated.
func (r *Renderer) Render(f Family, plane Plane, t complex128) (*Buffer, error) {
	return r.render(f, plane, t, r.generation.Add(1))
}

// RenderPreview renders at reduced resolution for live feedback while the
// selection is changing (drag, hover). The returned buffer is smaller than
// plane by the preview scale in each dimension; colorize it and upscale
// the image with ScaleImage.
func (r *Renderer) RenderPreview(f Family, plane Plane, t complex128) (*Buffer, error) {
	scale := r.opts.previewScale
	if scale <= 1 {
		return r.Render(f, plane, t)
	}
	small := plane
	small.Width = max(plane.Width/scale, 1)
	small.Height = max(plane.Height/scale, 1)
	return r.render(f, small, t, r.generation.Add(1))
}

func (r *Renderer) render(f Family, plane Plane, t complex128, gen uint64) (*Buffer, error) {
	params := r.Params(f, plane)
	if err := r.validate(plane, params); err != nil {
		return nil, err
	}

	buf := NewBuffer(plane.Width, plane.Height)
	buf.generation = gen

	bands := parallel.SplitRows(plane.Height, parallel.BandRows)
	work := make([]func(), len(bands))
	for i, band := range bands {
		b := band
		work[i] = func() {
			if r.generation.Load() != gen {
				return
			}
			o := newOrbit(f, params)
			for y := b.Y0; y < b.Y1; y++ {
				row := buf.row(y)
				for x := range row {
					row[x] = o.run(plane.PointAt(x, y))
				}
			}
		}
	}

	Logger().Debug("render dispatch",
		"family", f.Name(),
		"generation", gen,
		"width", plane.Width,
		"height", plane.Height,
		"bands", len(bands),
		"workers", r.pool.Workers())

	r.pool.ExecuteAll(work)

	if r.Stale(buf) {
		Logger().Warn("render superseded",
			"generation", gen,
			"current", r.generation.Load())
	} else {
		Logger().Debug("render complete", "generation", gen)
	}
	return buf, nil
}
