// Command dynamo-serve exposes the renderer over a websocket.
//
// Each connected client holds its own renderer. A client sends render
// requests as JSON; the server answers each with a JSON header followed
// by one binary PNG frame. Requests supersede each other per connection:
// a frame whose generation went stale while rendering is dropped, so a
// client scrubbing through views only ever receives the newest frame.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/DannyStoll1/dynamo"
)

// renderRequest is one frame request from a client.
type renderRequest struct {
	Family  string  `json:"family"`
	Degree  int     `json:"degree,omitempty"`
	JuliaRe float64 `json:"juliaRe,omitempty"`
	JuliaIm float64 `json:"juliaIm,omitempty"`

	Width   int     `json:"width"`
	Height  int     `json:"height"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Size    float64 `json:"size"`

	Palette     string `json:"palette,omitempty"`
	PaletteSeed uint64 `json:"paletteSeed,omitempty"`
	Interior    int    `json:"interior,omitempty"`
}

// frameHeader precedes each binary PNG frame.
type frameHeader struct {
	Generation uint64 `json:"generation"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ElapsedMS  int64  `json:"elapsedMs"`
}

// errorReply reports a rejected request without closing the connection.
type errorReply struct {
	Error string `json:"error"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	maxIter := flag.Int("iters", dynamo.DefaultMaxIter, "iteration budget per pixel")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dynamo.SetLogger(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", serveWS(logger, *maxIter))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func serveWS(logger *slog.Logger, maxIter int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("websocket accept failed", "err", err)
			return
		}
		defer c.CloseNow()

		session := &renderSession{
			conn:     c,
			renderer: dynamo.NewRenderer(dynamo.WithMaxIter(maxIter)),
			logger:   logger,
		}
		defer session.renderer.Close()

		if err := session.run(r.Context()); err != nil &&
			websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
			websocket.CloseStatus(err) != websocket.StatusGoingAway {
			logger.Warn("session ended", "err", err)
		}
	}
}

type renderSession struct {
	conn     *websocket.Conn
	renderer *dynamo.Renderer
	logger   *slog.Logger
}

func (s *renderSession) run(ctx context.Context) error {
	// Frames funnel through one writer goroutine; reading stays on this
	// goroutine so a long render never blocks request intake.
	frames := make(chan frame, 1)
	go s.writeLoop(ctx, frames)

	for {
		var req renderRequest
		if err := wsjson.Read(ctx, s.conn, &req); err != nil {
			return err
		}
		go s.render(ctx, req, frames)
	}
}

type frame struct {
	header frameHeader
	png    []byte
	errMsg string
}

func (s *renderSession) writeLoop(ctx context.Context, frames <-chan frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			if f.errMsg != "" {
				_ = wsjson.Write(ctx, s.conn, errorReply{Error: f.errMsg})
				continue
			}
			if err := wsjson.Write(ctx, s.conn, f.header); err != nil {
				return
			}
			if err := s.conn.Write(ctx, websocket.MessageBinary, f.png); err != nil {
				return
			}
		}
	}
}

func (s *renderSession) render(ctx context.Context, req renderRequest, frames chan frame) {
	started := time.Now()

	fam, plane, err := buildScene(req)
	if err != nil {
		s.push(ctx, frames, frame{errMsg: err.Error()})
		return
	}

	buf, err := s.renderer.Render(fam, plane, 0)
	if err != nil {
		if errors.Is(err, dynamo.ErrInvalidRequest) {
			s.push(ctx, frames, frame{errMsg: err.Error()})
			return
		}
		s.logger.Warn("render failed", "err", err)
		return
	}
	if s.renderer.Stale(buf) {
		// Superseded while rendering; the newer request's frame is the
		// only one the client should see.
		return
	}

	colorizer := dynamo.NewColorizer(buildPalette(req),
		dynamo.WithInteriorMode(dynamo.InteriorMode(req.Interior)),
		dynamo.WithInteriorTolerance(s.renderer.Params(fam, plane).PeriodicityTolerance))

	var png bytes.Buffer
	if err := dynamo.WritePNG(&png, colorizer.Image(buf)); err != nil {
		s.logger.Warn("png encode failed", "err", err)
		return
	}

	s.push(ctx, frames, frame{
		header: frameHeader{
			Generation: buf.Generation(),
			Width:      buf.Width(),
			Height:     buf.Height(),
			ElapsedMS:  time.Since(started).Milliseconds(),
		},
		png: png.Bytes(),
	})
}

// push replaces a queued frame rather than blocking: only the freshest
// frame is worth sending.
func (s *renderSession) push(ctx context.Context, frames chan frame, f frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frames <- f:
			return
		default:
			select {
			case <-frames:
			default:
			}
		}
	}
}

func buildScene(req renderRequest) (dynamo.Family, dynamo.Plane, error) {
	var fam dynamo.Family
	switch req.Family {
	case "", "mandelbrot":
		fam = dynamo.NewMandelbrot()
	case "multibrot":
		fam = dynamo.NewMultibrot(req.Degree)
	case "julia":
		fam = dynamo.NewJulia(dynamo.NewMandelbrot(), complex(req.JuliaRe, req.JuliaIm))
	default:
		return nil, dynamo.Plane{}, fmt.Errorf("unknown family %q", req.Family)
	}

	bounds := dynamo.CenteredSquare(2.2)
	if bp, ok := fam.(dynamo.BoundsProvider); ok {
		bounds = bp.DefaultBounds()
	}
	if req.Size > 0 {
		bounds = dynamo.Square(req.Size/2, complex(req.CenterX, req.CenterY))
	}

	width := req.Width
	if width <= 0 {
		width = 800
	}
	return fam, dynamo.NewPlane(width, req.Height, bounds), nil
}

func buildPalette(req renderRequest) dynamo.Palette {
	switch req.Palette {
	case "black":
		return dynamo.BlackPalette()
	case "random":
		seed := req.PaletteSeed
		if seed == 0 {
			seed = 1
		}
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return dynamo.RandomPalette(rng)
	default:
		return dynamo.WhitePalette()
	}
}
