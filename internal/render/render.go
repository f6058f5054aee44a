// Package render draws drawings as thumbnails, either rasterised or as SVG
// markup. Both outputs share one transform and one set of drawing rules.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/piwi3910/SheetThumb/internal/bounds"
	"github.com/piwi3910/SheetThumb/internal/geom"
	"github.com/piwi3910/SheetThumb/internal/logging"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/spline"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/math/fixed"
)

// Options configures thumbnail output.
type Options struct {
	Width              int
	Height             int
	Margin             float64 // fraction of the limiting axis the content fills
	SplineSubdivisions int
	StrokeWidth        float64 // pixels
	Background         color.RGBA
}

// DefaultOptions returns a 100×100 white canvas with a 10% margin.
func DefaultOptions() Options {
	return Options{
		Width:              100,
		Height:             100,
		Margin:             0.9,
		SplineSubdivisions: spline.DefaultSubdivisions,
		StrokeWidth:        1,
		Background:         model.White,
	}
}

// OptionsFromConfig maps the application settings onto render options.
func OptionsFromConfig(cfg model.AppConfig) Options {
	o := DefaultOptions()
	o.Width = cfg.ThumbnailWidth
	o.Height = cfg.ThumbnailHeight
	o.Margin = cfg.Margin
	o.SplineSubdivisions = cfg.SplineSubdivisions
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Margin <= 0 || o.Margin > 1 {
		o.Margin = def.Margin
	}
	if o.SplineSubdivisions < 1 {
		o.SplineSubdivisions = def.SplineSubdivisions
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = def.StrokeWidth
	}
	if o.Background.A == 0 {
		o.Background = def.Background
	}
	return o
}

// Renderer turns drawings into thumbnails. A Renderer holds no per-call
// state and may be shared between goroutines.
type Renderer struct {
	opts   Options
	logger *zap.Logger
}

// New returns a renderer. Zero option fields take their defaults and a nil
// logger discards output.
func New(opts Options, logger *zap.Logger) *Renderer {
	return &Renderer{opts: opts.withDefaults(), logger: logging.OrNop(logger)}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// layout computes the transform that fits entities on the canvas. ok is
// false when there is nothing to draw.
func (r *Renderer) layout(entities []model.Entity) (geom.Transform, bool, error) {
	if len(entities) == 0 {
		return geom.Transform{}, false, nil
	}
	b, err := bounds.Compute(entities, bounds.Options{SplineSubdivisions: r.opts.SplineSubdivisions})
	if err != nil {
		return geom.Transform{}, false, err
	}
	if b.IsEmpty() {
		return geom.Transform{}, false, nil
	}
	return geom.FitTransform(b, r.opts.Width, r.opts.Height, r.opts.Margin), true, nil
}

// Raster draws d onto a new image. An empty drawing yields a blank canvas.
// Entities on layers that are off are neither drawn nor fitted.
func (r *Renderer) Raster(d *model.Drawing) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: r.opts.Background}, image.Point{}, draw.Src)

	shown := d.VisibleEntities()
	tr, ok, err := r.layout(shown)
	if err != nil || !ok {
		return img, err
	}

	s := newRasterSurface(img, r.opts.StrokeWidth)
	for i, e := range shown {
		if err := r.drawEntity(d, e, tr, s); err != nil {
			return img, fmt.Errorf("entity %d (%s): %w", i, e.Kind(), err)
		}
	}
	r.logger.Debug("rasterised drawing",
		zap.String("file", d.Path),
		zap.Int("entities", len(shown)),
		zap.Float64("scale", tr.Scale))
	return img, nil
}

// rasterSurface strokes paths with anti-aliasing through rasterx.
type rasterSurface struct {
	dasher *rasterx.Dasher
	width  fixed.Int26_6
}

func newRasterSurface(img *image.RGBA, strokeWidth float64) *rasterSurface {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &rasterSurface{
		dasher: rasterx.NewDasher(w, h, scanner),
		width:  fixed.Int26_6(strokeWidth * 64),
	}
}

func (s *rasterSurface) begin(st style) {
	s.dasher.Clear()
	s.dasher.SetStroke(s.width, 4*64, rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.Round,
		dashPattern(st.lineType, s.width), 0)
	s.dasher.SetColor(st.color)
}

func (s *rasterSurface) circle(center model.Point2D, r float64, st style) {
	s.begin(st)
	rasterx.AddCircle(center.X, center.Y, r, s.dasher)
	s.dasher.Draw()
}

func (s *rasterSurface) ellipse(center model.Point2D, rx, ry, rot float64, st style) {
	s.begin(st)
	rasterx.AddEllipse(center.X, center.Y, rx, ry, rot, s.dasher)
	s.dasher.Draw()
}

func (s *rasterSurface) stroke(p *path, st style) {
	if p.empty() {
		return
	}
	s.begin(st)
	started := false
	for _, seg := range p.segs {
		switch seg.kind {
		case segMove:
			if started {
				s.dasher.Stop(false)
			}
			s.dasher.Start(toFixed(seg.pts[0]))
			started = true
		case segLine:
			s.dasher.Line(toFixed(seg.pts[0]))
		case segCubic:
			s.dasher.CubeBezier(toFixed(seg.pts[0]), toFixed(seg.pts[1]), toFixed(seg.pts[2]))
		case segArc:
			for _, c := range arcCubics(seg.center, seg.radius, seg.start, seg.sweep) {
				s.dasher.CubeBezier(toFixed(c[0]), toFixed(c[1]), toFixed(c[2]))
			}
		case segClose:
			s.dasher.Stop(true)
			started = false
		}
	}
	if started {
		s.dasher.Stop(false)
	}
	s.dasher.Draw()
}

func toFixed(p model.Point2D) fixed.Point26_6 {
	return rasterx.ToFixedP(p.X, p.Y)
}

// dashPattern scales a line type's dash array to the stroke width. Solid
// lines return nil.
func dashPattern(lt model.LineType, width fixed.Int26_6) []float64 {
	dashes := lt.Dashes()
	if len(dashes) == 0 {
		return nil
	}
	w := float64(width) / 64
	if w < 1 {
		w = 1
	}
	out := make([]float64, len(dashes))
	for i, v := range dashes {
		out[i] = v * w
	}
	return out
}
