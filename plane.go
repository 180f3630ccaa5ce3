package dynamo

import "fmt"

// Bounds is an axis-aligned rectangle in complex coordinates.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// NewBounds creates bounds from the two corner coordinates.
func NewBounds(minX, maxX, minY, maxY float64) Bounds {
	return Bounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

// CenteredSquare returns a square of half-width r centered at the origin.
func CenteredSquare(r float64) Bounds {
	return Bounds{MinX: -r, MaxX: r, MinY: -r, MaxY: r}
}

// Square returns a square of half-width r centered at z.
func Square(r float64, z complex128) Bounds {
	return Bounds{
		MinX: real(z) - r,
		MaxX: real(z) + r,
		MinY: imag(z) - r,
		MaxY: imag(z) + r,
	}
}

// RangeX returns the width of the bounds.
func (b Bounds) RangeX() float64 { return b.MaxX - b.MinX }

// RangeY returns the height of the bounds.
func (b Bounds) RangeY() float64 { return b.MaxY - b.MinY }

// Area returns the area of the bounds.
func (b Bounds) Area() float64 { return b.RangeX() * b.RangeY() }

// Center returns the midpoint of the bounds.
func (b Bounds) Center() complex128 {
	return complex((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2)
}

// Contains reports whether z lies inside the bounds.
// The maximum edges are exclusive, matching pixel addressing.
func (b Bounds) Contains(z complex128) bool {
	return real(z) >= b.MinX && real(z) < b.MaxX &&
		imag(z) >= b.MinY && imag(z) < b.MaxY
}

// Valid reports whether the bounds describe a non-empty finite rectangle.
func (b Bounds) Valid() bool {
	return isFinite(b.MinX) && isFinite(b.MaxX) &&
		isFinite(b.MinY) && isFinite(b.MaxY) &&
		b.MaxX > b.MinX && b.MaxY > b.MinY
}

// translate shifts the bounds by dz.
func (b Bounds) translate(dz complex128) Bounds {
	b.MinX += real(dz)
	b.MaxX += real(dz)
	b.MinY += imag(dz)
	b.MaxY += imag(dz)
	return b
}

// scaleAbout scales the bounds by s about the origin.
func (b Bounds) scaleAbout(s float64) Bounds {
	b.MinX *= s
	b.MaxX *= s
	b.MinY *= s
	b.MaxY *= s
	return b
}

// Plane maps between pixel coordinates and complex coordinates.
//
// Pixel (0, 0) is the top-left corner and corresponds to MinX + i*MaxY;
// the imaginary axis points up. A Plane is a small value type: navigation
// methods return a new Plane rather than mutating in place, so a Plane
// snapshot handed to a render can never change under it.
type Plane struct {
	Width, Height int
	Bounds        Bounds
}

// NewPlane creates a plane with the given pixel dimensions over bounds.
// If exactly one of width or height is zero it is inferred from the other
// so that pixels stay square.
func NewPlane(width, height int, bounds Bounds) Plane {
	if width <= 0 && height > 0 {
		width = inferWidth(height, bounds)
	} else if height <= 0 && width > 0 {
		height = inferHeight(width, bounds)
	}
	return Plane{Width: width, Height: height, Bounds: bounds}
}

func inferHeight(width int, bounds Bounds) int {
	return int(float64(width) * bounds.RangeY() / bounds.RangeX())
}

func inferWidth(height int, bounds Bounds) int {
	return int(float64(height) * bounds.RangeX() / bounds.RangeY())
}

// Valid reports whether the plane has positive resolution and finite,
// non-empty bounds.
func (p Plane) Valid() bool {
	return p.Width > 0 && p.Height > 0 && p.Bounds.Valid()
}

// PixelCount returns the total number of pixels.
func (p Plane) PixelCount() int { return p.Width * p.Height }

// PixelWidth returns the complex-plane width of one pixel.
func (p Plane) PixelWidth() float64 {
	return p.Bounds.RangeX() / float64(p.Width)
}

// PointAt maps pixel coordinates to the complex plane.
// Row 0 maps to the top edge (MaxY); coordinates outside the pixel grid
// extrapolate linearly, which navigation code relies on for drag deltas.
func (p Plane) PointAt(x, y int) complex128 {
	re := p.Bounds.MinX + float64(x)*p.Bounds.RangeX()/float64(p.Width)
	im := p.Bounds.MaxY - float64(y)*p.Bounds.RangeY()/float64(p.Height)
	return complex(re, im)
}

// Locate maps a complex point to pixel coordinates.
// ok is false when z falls outside the plane.
func (p Plane) Locate(z complex128) (x, y int, ok bool) {
	if !p.Bounds.Contains(z) {
		return 0, 0, false
	}
	fx := (real(z) - p.Bounds.MinX) / p.Bounds.RangeX()
	fy := (p.Bounds.MaxY - imag(z)) / p.Bounds.RangeY()
	return int(fx * float64(p.Width)), int(fy * float64(p.Height)), true
}

// Shift translates the view by dz.
func (p Plane) Shift(dz complex128) Plane {
	p.Bounds = p.Bounds.translate(dz)
	return p
}

// Recenter moves the view center to z without changing the zoom level.
func (p Plane) Recenter(z complex128) Plane {
	return p.Shift(z - p.Bounds.Center())
}

// Zoom scales the view about base. A scale below 1 zooms in.
func (p Plane) Zoom(scale float64, base complex128) Plane {
	p.Bounds = p.Bounds.translate(-base).scaleAbout(scale).translate(base)
	return p
}

// Reset returns a plane over the given bounds keeping the current width,
// with the height re-inferred to preserve square pixels.
func (p Plane) Reset(bounds Bounds) Plane {
	return NewPlane(p.Width, 0, bounds)
}

// WithWidth returns a plane with the given pixel width and the height
// inferred from the aspect ratio of the bounds.
func (p Plane) WithWidth(width int) Plane {
	return NewPlane(width, 0, p.Bounds)
}

// WithHeight returns a plane with the given pixel height and the width
// inferred from the aspect ratio of the bounds.
func (p Plane) WithHeight(height int) Plane {
	return NewPlane(0, height, p.Bounds)
}

func (p Plane) String() string {
	return fmt.Sprintf("%dx%d [%g, %g] x [%g, %g]",
		p.Width, p.Height, p.Bounds.MinX, p.Bounds.MaxX, p.Bounds.MinY, p.Bounds.MaxY)
}
