package dynamo

// Buffer is the pixel-indexed result grid of one render.
//
// Results are stored row-major in a single allocation. A buffer is written
// exactly once, by the render that creates it, with each worker touching a
// disjoint row range; after the render joins it is immutable and safe to
// share. Re-renders allocate a new buffer rather than patching in place, so
// a consumer never observes a half-updated frame.
type Buffer struct {
	width, height int
	generation    uint64
	results       []OrbitResult
}

// NewBuffer allocates a result grid of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		width:   width,
		height:  height,
		results: make([]OrbitResult, width*height),
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Generation returns the id of the render request that produced the buffer.
func (b *Buffer) Generation() uint64 { return b.generation }

// At returns the result at pixel (x, y). Out-of-range coordinates return
// the zero result.
func (b *Buffer) At(x, y int) OrbitResult {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return OrbitResult{}
	}
	return b.results[y*b.width+x]
}

// set stores a result. Callers stay within their own row band.
func (b *Buffer) set(x, y int, r OrbitResult) {
	b.results[y*b.width+x] = r
}

// row returns the backing slice for one row.
func (b *Buffer) row(y int) []OrbitResult {
	return b.results[y*b.width : (y+1)*b.width]
}
