package parallel

// BandRows is the default number of pixel rows per render band.
// Small enough that work stealing can rebalance a frame whose lower half
// is all interior points, large enough that task overhead stays invisible.
const BandRows = 16

// Band is a horizontal slice of the pixel grid, processed by one worker.
// Bands of one render never overlap, which is what makes lock-free writes
// into the shared result buffer safe.
type Band struct {
	// Y0 is the first row of the band; Y1 is one past the last.
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int { return b.Y1 - b.Y0 }

// SplitRows partitions height pixel rows into bands of at most rowsPerBand
// rows. A non-positive rowsPerBand falls back to BandRows. The final band
// absorbs the remainder rows.
func SplitRows(height, rowsPerBand int) []Band {
	if height <= 0 {
		return nil
	}
	if rowsPerBand <= 0 {
		rowsPerBand = BandRows
	}

	n := height / rowsPerBand
	if n == 0 {
		n = 1
	}
	bands := make([]Band, n)
	for i := range bands {
		bands[i] = Band{Y0: i * rowsPerBand, Y1: (i + 1) * rowsPerBand}
	}
	bands[n-1].Y1 = height
	return bands
}
