package dynamo

import (
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Image renders the buffer through the colorizer into an RGBA image.
// Row 0 of the buffer is the top scanline.
func (c *Colorizer) Image(buf *Buffer) *image.RGBA {
	width, height := buf.Width(), buf.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		i := img.PixOffset(0, y)
		for x := 0; x < width; x++ {
			col := c.Color(buf.At(x, y))
			img.Pix[i+0] = uint8(clamp255(col.R * 255))
			img.Pix[i+1] = uint8(clamp255(col.G * 255))
			img.Pix[i+2] = uint8(clamp255(col.B * 255))
			img.Pix[i+3] = uint8(clamp255(col.A * 255))
			i += 4
		}
	}
	return img
}

// ScaleImage resizes src to width x height with nearest-neighbor
// sampling. Preview buffers are upscaled this way; nearest keeps the
// escape bands crisp instead of smearing them.
func ScaleImage(src *image.RGBA, width, height int) *image.RGBA {
	if b := src.Bounds(); b.Dx() == width && b.Dy() == height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePNG encodes the image as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SavePNG writes the image to a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, img)
}
