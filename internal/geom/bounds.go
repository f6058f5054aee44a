package geom

import (
	"math"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// Bounds accumulates an axis-aligned 2D bounding box. Start from
// EmptyBounds; after any Extend, MinX <= MaxX and MinY <= MaxY.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBounds returns an inverted, infinite box that any point extends.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p model.Point2D) {
	b.ExtendXY(p.X, p.Y)
}

// ExtendXY grows the box to include (x, y).
func (b *Bounds) ExtendXY(x, y float64) {
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Union grows the box to include o. Empty boxes are ignored.
func (b *Bounds) Union(o Bounds) {
	if o.IsEmpty() {
		return
	}
	b.ExtendXY(o.MinX, o.MinY)
	b.ExtendXY(o.MaxX, o.MaxY)
}

// IsEmpty reports whether nothing has been added to the box.
func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() model.Point2D {
	return model.Point2D{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Extents converts the box to the model's serialisable form.
func (b Bounds) Extents() model.Extents {
	return model.Extents{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// cardinals are the only angles at which an arc can reach past the box
// spanned by its endpoints.
var cardinals = [4]float64{0, 90, 180, 270}

// ArcBounds returns the exact bounds of a counter-clockwise arc: its two
// endpoints plus every cardinal point inside the sweep.
func ArcBounds(center model.Point2D, r, start, end float64) Bounds {
	b := EmptyBounds()
	b.Extend(PolarPoint(center, r, start))
	b.Extend(PolarPoint(center, r, end))
	for _, a := range cardinals {
		if IsAngleBetween(a, start, end) {
			b.Extend(PolarPoint(center, r, a))
		}
	}
	return b
}
