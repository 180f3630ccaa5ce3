// Command dynamo-render renders one frame of a dynamical plane to PNG.
//
// Usage:
//
//	dynamo-render -family mandelbrot -width 1600 -o mandelbrot.png
//	dynamo-render -family julia -c=-0.1226,0.7449 -palette random -seed 7
//	dynamo-render -family multibrot -degree 4 -center 0,0 -size 3.2
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/DannyStoll1/dynamo"
)

func main() {
	var (
		family   = flag.String("family", "mandelbrot", "family: mandelbrot, multibrot or julia")
		degree   = flag.Int("degree", 3, "degree of the multibrot family")
		param    = flag.String("c", "", "julia parameter as re,im (empty uses the family default)")
		width    = flag.Int("width", 1200, "image width in pixels")
		height   = flag.Int("height", 0, "image height in pixels (0 keeps square pixels)")
		center   = flag.String("center", "", "view center as re,im (defaults to the family view)")
		size     = flag.Float64("size", 0, "view width in complex units (0 keeps the family view)")
		maxIter  = flag.Int("iters", dynamo.DefaultMaxIter, "iteration budget per pixel")
		palette  = flag.String("palette", "white", "palette: white, black or random")
		seed     = flag.Uint64("seed", 1, "seed for the random palette")
		interior = flag.Int("interior", 0, "interior mode index (see dynamo.InteriorMode)")
		output   = flag.String("o", "out.png", "output PNG path")
		verbose  = flag.Bool("v", false, "log render progress to stderr")
	)
	flag.Parse()

	if *verbose {
		dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	fam, err := buildFamily(*family, *degree, *param)
	if err != nil {
		fatal(err)
	}

	bounds := dynamo.CenteredSquare(2.2)
	if bp, ok := fam.(dynamo.BoundsProvider); ok {
		bounds = bp.DefaultBounds()
	}
	if *center != "" {
		z, err := parseComplex(*center)
		if err != nil {
			fatal(fmt.Errorf("bad -center: %w", err))
		}
		bounds = dynamo.Square(bounds.RangeX()/2, z)
	}
	if *size > 0 {
		bounds = dynamo.Square(*size/2, bounds.Center())
	}

	plane := dynamo.NewPlane(*width, *height, bounds)

	r := dynamo.NewRenderer(dynamo.WithMaxIter(*maxIter))
	defer r.Close()

	buf, err := r.Render(fam, plane, 0)
	if err != nil {
		fatal(err)
	}

	colorizer := dynamo.NewColorizer(buildPalette(*palette, *seed),
		dynamo.WithInteriorMode(dynamo.InteriorMode(*interior)),
		dynamo.WithInteriorTolerance(r.Params(fam, plane).PeriodicityTolerance))

	if err := dynamo.SavePNG(*output, colorizer.Image(buf)); err != nil {
		fatal(err)
	}
}

func buildFamily(name string, degree int, param string) (dynamo.Family, error) {
	switch name {
	case "mandelbrot":
		return dynamo.NewMandelbrot(), nil
	case "multibrot":
		return dynamo.NewMultibrot(degree), nil
	case "julia":
		var base dynamo.Family = dynamo.NewMandelbrot()
		var c complex128
		if param == "" {
			if sel, ok := base.(dynamo.Selector); ok {
				c = sel.DefaultSelection()
			}
		} else {
			var err error
			if c, err = parseComplex(param); err != nil {
				return nil, fmt.Errorf("bad -c: %w", err)
			}
		}
		return dynamo.NewJulia(base, c), nil
	default:
		return nil, fmt.Errorf("unknown family %q", name)
	}
}

func buildPalette(name string, seed uint64) dynamo.Palette {
	switch name {
	case "black":
		return dynamo.BlackPalette()
	case "random":
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return dynamo.RandomPalette(rng)
	default:
		return dynamo.WhitePalette()
	}
}

func parseComplex(s string) (complex128, error) {
	re, im, ok := strings.Cut(s, ",")
	if !ok {
		im = "0"
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
	if err != nil {
		return 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(im), 64)
	if err != nil {
		return 0, err
	}
	return complex(x, y), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "dynamo-render:", err)
	os.Exit(1)
}
