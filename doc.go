// Package dynamo is the numerical core of an interactive explorer for
// discrete complex dynamical systems.
//
// # Overview
//
// dynamo iterates parametrized families of maps on the complex plane and
// turns per-point orbit data into images. It provides the escape-time and
// cycle-detection orbit evaluator, a parallel tiled renderer, a palette-based
// coloring pipeline, a polynomial root solver for locating periodic orbits,
// and a tracer for external rays and equipotential curves.
//
// GUI toolkits, hotkey dispatch and script compilation live outside this
// module. A frontend hands dynamo an already-constructed [Family], a [Plane]
// and render settings, and receives a [Buffer] of per-pixel [OrbitResult]s
// (or a finished image) tagged with the generation that produced it.
//
// # Quick Start
//
//	import "github.com/DannyStoll1/dynamo"
//
//	fam := dynamo.NewMandelbrot()
//	plane := dynamo.NewPlane(800, 0, fam.DefaultBounds())
//
//	r := dynamo.NewRenderer()
//	defer r.Close()
//
//	buf, err := r.Render(fam, plane, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	img := dynamo.NewColorizer(dynamo.WhitePalette()).Image(buf)
//	dynamo.SavePNG("mandelbrot.png", img)
//
// # Coordinate System
//
// Pixel row 0 is the top of the image and maps to the largest imaginary
// part of the plane's bounds; the imaginary axis points up, as in every
// math text. [Plane.PointAt] and [Plane.Locate] convert between the two.
//
// # Concurrency
//
// A [Renderer] owns a fixed worker pool. The [Family] under render is shared
// read-only by all workers and must be pure; every render writes into a
// freshly allocated buffer partitioned into disjoint row bands, so results
// are bit-identical regardless of worker count. Root solving and curve
// tracing run on the calling goroutine.
package dynamo

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
