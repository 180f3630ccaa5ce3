package dynamo

// RenderOption configures a Renderer during creation.
// Use functional options to customize renderer behavior.
//
// Example:
//
//	// Default renderer (GOMAXPROCS workers, standard tolerances)
//	r := dynamo.NewRenderer()
//
//	// Custom worker count and iteration budget
//	r := dynamo.NewRenderer(dynamo.WithWorkers(4), dynamo.WithMaxIter(4096))
type RenderOption func(*renderOptions)

// renderOptions holds optional configuration for Renderer creation.
type renderOptions struct {
	workers      int
	maxIter      int
	minIter      int
	iterCeiling  int
	escapeRadius float64
	periodicity  float64
	maxPixels    int
	previewScale int
}

// defaultRenderOptions returns the default renderer configuration.
func defaultRenderOptions() renderOptions {
	return renderOptions{
		workers:      0, // resolved to GOMAXPROCS by the worker pool
		maxIter:      DefaultMaxIter,
		minIter:      0,
		iterCeiling:  DefaultIterCeiling,
		escapeRadius: 0, // resolved per family at render time
		periodicity:  0, // resolved from the plane at render time
		maxPixels:    DefaultMaxPixels,
		previewScale: DefaultPreviewScale,
	}
}

// WithWorkers sets the number of worker goroutines used for rendering.
// Zero or negative values select runtime.GOMAXPROCS(0).
func WithWorkers(n int) RenderOption {
	return func(o *renderOptions) {
		o.workers = n
	}
}

// WithMaxIter sets the iteration budget per pixel.
// Requests exceeding the renderer's ceiling are rejected by Render.
func WithMaxIter(n int) RenderOption {
	return func(o *renderOptions) {
		o.maxIter = n
	}
}

// WithMinIter sets a minimum iteration count before escape or cycle
// detection may terminate an orbit. Useful for perturbed families whose
// early iterates leave the escape region transiently.
func WithMinIter(n int) RenderOption {
	return func(o *renderOptions) {
		o.minIter = n
	}
}

// WithIterCeiling sets the upper bound that Render enforces on the
// per-pixel iteration budget. Requests above the ceiling fail with
// ErrInvalidRequest rather than stalling the pool.
func WithIterCeiling(n int) RenderOption {
	return func(o *renderOptions) {
		o.iterCeiling = n
	}
}

// WithEscapeRadius overrides the escape radius (in |z| units) for all
// renders from this renderer. Zero keeps the per-family default.
// Render rejects non-finite values and values <= 1.
func WithEscapeRadius(r float64) RenderOption {
	return func(o *renderOptions) {
		o.escapeRadius = r
	}
}

// WithPeriodicityTolerance overrides the squared-distance tolerance used
// by cycle detection. Zero derives the tolerance from the view area, so
// it tightens automatically as the user zooms in.
func WithPeriodicityTolerance(tol float64) RenderOption {
	return func(o *renderOptions) {
		o.periodicity = tol
	}
}

// WithMaxPixels caps the pixel count of a single render request.
// Oversized grids fail with ErrInvalidRequest.
func WithMaxPixels(n int) RenderOption {
	return func(o *renderOptions) {
		o.maxPixels = n
	}
}

// WithPreviewScale sets the downsampling factor used by RenderPreview.
// A scale of 4 renders at quarter resolution in each dimension.
// Values below 1 are treated as 1 (no downsampling).
func WithPreviewScale(s int) RenderOption {
	return func(o *renderOptions) {
		o.previewScale = s
	}
}
