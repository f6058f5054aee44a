package geom

import (
	"math"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// Transform maps model coordinates to device (raster) coordinates:
//
//	deviceX = x*Scale + OffsetX
//	deviceY = CanvasHeight - (y*Scale + OffsetY)
//
// Device Y grows downward while model Y grows upward, hence the flip.
type Transform struct {
	Scale        float64
	OffsetX      float64
	OffsetY      float64
	CanvasHeight float64
}

// Apply maps a model point to device space.
func (t Transform) Apply(p model.Point2D) model.Point2D {
	return model.Point2D{
		X: p.X*t.Scale + t.OffsetX,
		Y: t.CanvasHeight - (p.Y*t.Scale + t.OffsetY),
	}
}

// Apply3 maps a 3D model point to device space, ignoring Z.
func (t Transform) Apply3(p model.Point3D) model.Point2D {
	return t.Apply(p.XY())
}

// Inverse maps a device point back to model space.
func (t Transform) Inverse(p model.Point2D) model.Point2D {
	return model.Point2D{
		X: (p.X - t.OffsetX) / t.Scale,
		Y: (t.CanvasHeight - p.Y - t.OffsetY) / t.Scale,
	}
}

// Length scales a model distance to device pixels.
func (t Transform) Length(d float64) float64 { return d * t.Scale }

// FitTransform returns the transform that fits b into a width×height canvas,
// uniformly scaled to fill margin (e.g. 0.9) of the limiting axis and
// centred. An axis with no extent does not limit the scale; a single point
// is drawn at scale 1.
func FitTransform(b Bounds, width, height int, margin float64) Transform {
	w, h := float64(width), float64(height)
	dx, dy := b.Width(), b.Height()

	scale := math.Inf(1)
	if dx > Epsilon {
		scale = w / dx
	}
	if dy > Epsilon {
		scale = math.Min(scale, h/dy)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	} else {
		scale *= margin
	}

	return Transform{
		Scale:        scale,
		OffsetX:      (w-dx*scale)/2 - b.MinX*scale,
		OffsetY:      (h-dy*scale)/2 - b.MinY*scale,
		CanvasHeight: h,
	}
}
