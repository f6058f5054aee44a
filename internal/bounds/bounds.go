// Package bounds computes tight 2D bounding boxes over the entities of a
// drawing, including the extrema of curved segments.
package bounds

import (
	"fmt"

	"github.com/piwi3910/SheetThumb/internal/geom"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/spline"
)

// Options configures bounds computation.
type Options struct {
	// SplineSubdivisions is the number of intervals each spline is sampled
	// with. Zero means spline.DefaultSubdivisions.
	SplineSubdivisions int
}

func (o Options) subdivisions() int {
	if o.SplineSubdivisions < 1 {
		return spline.DefaultSubdivisions
	}
	return o.SplineSubdivisions
}

// Compute returns the bounding box of all entities. An empty slice yields
// geom.EmptyBounds; callers must check IsEmpty before using the result.
func Compute(entities []model.Entity, opts Options) (geom.Bounds, error) {
	b := geom.EmptyBounds()
	for i, e := range entities {
		eb, err := ForEntity(e, opts)
		if err != nil {
			return b, fmt.Errorf("entity %d (%s): %w", i, e.Kind(), err)
		}
		b.Union(eb)
	}
	return b, nil
}

// ForEntity returns the bounding box of a single entity.
func ForEntity(e model.Entity, opts Options) (geom.Bounds, error) {
	b := geom.EmptyBounds()

	switch v := e.(type) {
	case *model.Line:
		b.Extend(v.Start)
		b.Extend(v.End)

	case *model.Circle:
		b.ExtendXY(v.Center.X-v.Radius, v.Center.Y-v.Radius)
		b.ExtendXY(v.Center.X+v.Radius, v.Center.Y+v.Radius)

	case *model.Arc:
		b.Union(geom.ArcBounds(v.Center, v.Radius, v.StartAngle, v.EndAngle))

	case *model.Polyline2D:
		n := len(v.Vertices)
		for _, vx := range v.Vertices {
			b.Extend(vx.Pos)
		}
		for i := 0; i < v.SegmentCount(); i++ {
			cur, next := v.Vertices[i], v.Vertices[(i+1)%n]
			if arc, ok := geom.BulgeToArc(cur.Pos, next.Pos, cur.Bulge); ok {
				b.Union(geom.ArcBounds(arc.Center, arc.Radius, arc.Start, arc.End))
			}
		}

	case *model.Polyline3D:
		for _, p := range v.Vertices {
			b.ExtendXY(p.X, p.Y)
		}

	case *model.Spline:
		// Control points alone give a looser box than the curve itself.
		if err := spline.Validate(v); err != nil {
			return b, err
		}
		for p := range spline.Sample(v.ControlPoints, v.Degree, v.Knots, opts.subdivisions()) {
			b.ExtendXY(p.X, p.Y)
		}

	case *model.Ellipse:
		minor := geom.MinorAxis(v.MajorAxis, v.Normal, v.MinorLength)
		for _, sa := range []float64{-1, 1} {
			for _, sb := range []float64{-1, 1} {
				corner := v.Center.Add(v.MajorAxis.Scale(sa)).Add(minor.Scale(sb))
				b.ExtendXY(corner.X, corner.Y)
			}
		}

	case *model.GenericPolyline:
		// Bulges are not available for the fallback records.
		for _, p := range v.Vertices {
			b.ExtendXY(p.X, p.Y)
		}
	}
	return b, nil
}

// OfDrawing is a convenience wrapper computing the bounds of a drawing's
// entities.
func OfDrawing(d *model.Drawing, opts Options) (geom.Bounds, error) {
	return Compute(d.Entities, opts)
}
