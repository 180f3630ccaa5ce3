// Command dynamo-explore is an interactive viewer for the dynamo core.
//
// Controls:
//
//	arrow keys / drag   pan
//	wheel, + / -        zoom about the cursor
//	J                   toggle the Julia set at the cursor
//	R, W, B             random / white / black palette
//	[ and ]             shrink / widen the palette cycle
//	P                   shift the palette phase
//	I                   cycle the interior coloring mode
//	1-5                 jump to a named landmark region
//	space               reset the view
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/DannyStoll1/dynamo"
)

const (
	screenWidth  = 960
	screenHeight = 720
)

// Classic landmark regions of the parameter plane, bound to the digit keys.
var landmarks = []struct {
	name   string
	bounds dynamo.Bounds
}{
	{"Seahorse Valley", dynamo.NewBounds(-0.8, -0.7, 0.05, 0.15)},
	{"Elephant Valley", dynamo.NewBounds(-1.85, -1.75, -0.10, -0.02)},
	{"Spiral Minibrot", dynamo.NewBounds(-0.7435, -0.7420, 0.1310, 0.1325)},
	{"Triple Spiral", dynamo.NewBounds(-0.7480, -0.7450, 0.0950, 0.0980)},
	{"Valley of the Dragon", dynamo.NewBounds(-0.7400, -0.7350, 0.1800, 0.1850)},
}

type viewer struct {
	fam      dynamo.Family
	plane    dynamo.Plane
	renderer *dynamo.Renderer
	palette  dynamo.Palette
	interior dynamo.InteriorMode
	rng      *rand.Rand

	julia      bool
	parentFam  dynamo.Family
	parentView dynamo.Plane

	// mu guards the render state below. buf carries the family and plane
	// it was rendered with, so palette recoloring never mixes the cached
	// results with a view the user has since navigated away from.
	mu        sync.Mutex
	buf       *dynamo.Buffer
	bufFam    dynamo.Family
	bufPlane  dynamo.Plane
	frame     *ebiten.Image
	dirty     bool
	preview   bool
	rendering bool

	dragging   bool
	dragAnchor complex128
}

func newViewer(fam dynamo.Family) *viewer {
	v := &viewer{
		fam:      fam,
		renderer: dynamo.NewRenderer(),
		palette:  dynamo.WhitePalette(),
		rng:      rand.New(rand.NewPCG(2, 3)),
		dirty:    true,
	}
	v.plane = dynamo.NewPlane(screenWidth, screenHeight, v.defaultBounds())
	return v
}

func (v *viewer) defaultBounds() dynamo.Bounds {
	if bp, ok := v.fam.(dynamo.BoundsProvider); ok {
		return bp.DefaultBounds()
	}
	return dynamo.CenteredSquare(2.2)
}

func (v *viewer) cursorPoint() complex128 {
	x, y := ebiten.CursorPosition()
	return v.plane.PointAt(x, y)
}

func (v *viewer) Update() error {
	v.handleNavigation()
	v.handlePalette()
	v.kickRender()
	return nil
}

func (v *viewer) handleNavigation() {
	pan := v.plane.Bounds.RangeX() * 0.02
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		v.moveBy(complex(-pan, 0))
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		v.moveBy(complex(pan, 0))
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		v.moveBy(complex(0, pan))
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		v.moveBy(complex(0, -pan))
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		scale := 0.85
		if wheelY < 0 {
			scale = 1 / scale
		}
		v.zoomAt(scale, v.cursorPoint())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		v.zoomAt(0.5, v.plane.Bounds.Center())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		v.zoomAt(2, v.plane.Bounds.Center())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.plane = v.plane.Reset(v.defaultBounds())
		v.markDirty(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyJ) {
		v.toggleJulia()
	}
	if !v.julia {
		for i, lm := range landmarks {
			if inpututil.IsKeyJustPressed(ebiten.KeyDigit1 + ebiten.Key(i)) {
				v.plane = v.plane.Reset(lm.bounds)
				v.markDirty(false)
				dynamo.Logger().Info("landmark", "name", lm.name)
			}
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		p := v.cursorPoint()
		if v.dragging {
			v.moveBy(v.dragAnchor - p)
		} else {
			v.dragging = true
			v.dragAnchor = p
		}
	} else {
		if v.dragging {
			// Drag released: replace the preview with a full render.
			v.markDirty(false)
		}
		v.dragging = false
	}
}

func (v *viewer) moveBy(dz complex128) {
	v.plane = v.plane.Shift(dz)
	v.markDirty(true)
}

func (v *viewer) zoomAt(scale float64, base complex128) {
	v.plane = v.plane.Zoom(scale, base)
	v.markDirty(true)
}

func (v *viewer) toggleJulia() {
	if v.julia {
		v.fam, v.plane = v.parentFam, v.parentView
		v.julia = false
	} else {
		v.parentFam, v.parentView = v.fam, v.plane
		v.fam = dynamo.NewJulia(v.fam, v.cursorPoint())
		v.julia = true
		v.plane = dynamo.NewPlane(screenWidth, screenHeight, v.defaultBounds())
	}
	v.markDirty(false)
}

func (v *viewer) handlePalette() {
	// The render goroutine reads the palette and interior mode while
	// colorizing, so edits happen under the same lock.
	v.mu.Lock()
	defer v.mu.Unlock()
	changed := false
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.palette = dynamo.RandomPalette(v.rng)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		v.palette = dynamo.WhitePalette()
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		v.palette = dynamo.BlackPalette()
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		v.palette = v.palette.ScaleCycle(0.5)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		v.palette = v.palette.ScaleCycle(2)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.palette = v.palette.ShiftPhase(0.125)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		v.interior = (v.interior + 1) % 8
		changed = true
	}
	if changed && v.buf != nil {
		// Palette edits recolor the existing buffer; no re-render needed.
		v.frame = ebiten.NewImageFromImage(v.colorize(v.buf, v.bufFam, v.bufPlane))
	}
}

func (v *viewer) markDirty(preview bool) {
	v.mu.Lock()
	v.dirty = true
	v.preview = preview
	v.mu.Unlock()
}

// kickRender starts at most one render goroutine at a time; the
// generation counter inside the renderer discards frames that were
// superseded while in flight.
func (v *viewer) kickRender() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.dirty || v.rendering {
		return
	}
	v.dirty = false
	v.rendering = true

	fam, plane, preview := v.fam, v.plane, v.preview
	go func() {
		var buf *dynamo.Buffer
		var err error
		if preview {
			buf, err = v.renderer.RenderPreview(fam, plane, 0)
		} else {
			buf, err = v.renderer.Render(fam, plane, 0)
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		v.rendering = false
		if err != nil {
			dynamo.Logger().Warn("render failed", "err", err)
			return
		}
		if v.renderer.Stale(buf) {
			v.dirty = true
			return
		}
		v.buf = buf
		v.bufFam, v.bufPlane = fam, plane
		img := v.colorize(buf, fam, plane)
		if preview {
			img = dynamo.ScaleImage(img, plane.Width, plane.Height)
		}
		v.frame = ebiten.NewImageFromImage(img)
	}()
}

// colorize takes the family and plane the buffer was rendered with, not
// the viewer's current ones: the render goroutine runs concurrently with
// navigation, and the interior tolerance must match the rendered view.
func (v *viewer) colorize(buf *dynamo.Buffer, fam dynamo.Family, plane dynamo.Plane) *image.RGBA {
	c := dynamo.NewColorizer(v.palette,
		dynamo.WithInteriorMode(v.interior),
		dynamo.WithInteriorTolerance(v.renderer.Params(fam, plane).PeriodicityTolerance))
	return c.Image(buf)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.mu.Lock()
	frame := v.frame
	v.mu.Unlock()
	if frame != nil {
		screen.DrawImage(frame, nil)
	}
}

func (v *viewer) Layout(int, int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	var (
		family  = flag.String("family", "mandelbrot", "family: mandelbrot or multibrot")
		degree  = flag.Int("degree", 3, "degree of the multibrot family")
		verbose = flag.Bool("v", false, "log render progress to stderr")
	)
	flag.Parse()

	if *verbose {
		dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	var fam dynamo.Family
	switch *family {
	case "mandelbrot":
		fam = dynamo.NewMandelbrot()
	case "multibrot":
		fam = dynamo.NewMultibrot(*degree)
	default:
		log.Fatalf("unknown family %q", *family)
	}

	v := newViewer(fam)
	defer v.renderer.Close()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("dynamo - %s", fam.Name()))
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
