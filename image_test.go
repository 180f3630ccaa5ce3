package dynamo

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestColorizerImage(t *testing.T) {
	buf := NewBuffer(3, 2)
	buf.set(0, 0, OrbitResult{Kind: ResultEscaped, Potential: 0}) // white stop
	buf.set(1, 0, OrbitResult{Kind: ResultPeriodic, Period: 1})
	buf.set(2, 1, OrbitResult{Kind: ResultBounded})

	c := NewColorizer(WhitePalette(), WithInteriorMode(InteriorSolid))
	img := c.Image(buf)

	if got := img.Bounds(); got.Dx() != 3 || got.Dy() != 2 {
		t.Fatalf("image bounds = %v, want 3x2", got)
	}

	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("potential-0 pixel = %d %d %d %d, want white", r>>8, g>>8, b>>8, a>>8)
	}
	r, g, b, _ = img.At(1, 0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("solid interior pixel = %d %d %d, want black", r, g, b)
	}
	// The indeterminate sentinel is neither black nor white.
	r, g, b, _ = img.At(2, 1).RGBA()
	if (r == 0 && g == 0 && b == 0) || (r>>8 == 255 && g>>8 == 255 && b>>8 == 255) {
		t.Errorf("indeterminate pixel = %d %d %d, want a distinct sentinel", r, g, b)
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, rgba8(255, 0, 0))
	src.SetRGBA(1, 0, rgba8(0, 0, 255))

	dst := ScaleImage(src, 4, 2)
	if b := dst.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("scaled bounds = %v, want 4x2", b)
	}
	// Nearest-neighbor replicates, never blends.
	if got := dst.RGBAAt(0, 0); got != rgba8(255, 0, 0) {
		t.Errorf("top-left = %v, want pure red", got)
	}
	if got := dst.RGBAAt(3, 1); got != rgba8(0, 0, 255) {
		t.Errorf("bottom-right = %v, want pure blue", got)
	}

	// Same size returns the source untouched.
	if same := ScaleImage(src, 2, 1); same != src {
		t.Error("no-op scale copied the image")
	}
}

func TestWritePNGRoundTrip(t *testing.T) {
	f := NewMandelbrot()
	plane := NewPlane(16, 12, f.DefaultBounds())
	r := NewRenderer(WithMaxIter(50))
	defer r.Close()

	buf, err := r.Render(f, plane, 0)
	if err != nil {
		t.Fatal(err)
	}
	img := NewColorizer(WhitePalette()).Image(buf)

	var out bytes.Buffer
	if err := WritePNG(&out, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	decoded, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("decoded bounds = %v, want 16x12", b)
	}
}

func rgba8(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
