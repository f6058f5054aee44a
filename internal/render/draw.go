package render

import (
	"math"

	"github.com/piwi3910/SheetThumb/internal/geom"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/spline"
)

// drawEntity draws one entity onto s with the shared transform.
func (r *Renderer) drawEntity(d *model.Drawing, e model.Entity, tr geom.Transform, s surface) error {
	st := style{color: d.DisplayColor(e), lineType: d.EffectiveLineType(e)}

	switch v := e.(type) {
	case *model.Line:
		var p path
		p.moveTo(tr.Apply(v.Start))
		p.lineTo(tr.Apply(v.End))
		s.stroke(&p, st)

	case *model.Circle:
		s.circle(tr.Apply(v.Center), tr.Length(v.Radius), st)

	case *model.Arc:
		center := tr.Apply(v.Center)
		radius := tr.Length(v.Radius)
		sweep := geom.SweepDegrees(v.StartAngle, v.EndAngle)
		var p path
		p.moveTo(devicePolar(center, radius, v.StartAngle))
		p.arcTo(center, radius, v.StartAngle, sweep)
		s.stroke(&p, st)

	case *model.Polyline2D:
		if len(v.Vertices) < 2 {
			return nil
		}
		if v.Smooth {
			pts := make([]model.Point2D, len(v.Vertices))
			for i, vx := range v.Vertices {
				pts[i] = tr.Apply(vx.Pos)
			}
			var p path
			p.smoothCurve(pts, v.Closed)
			s.stroke(&p, st)
			return nil
		}
		s.stroke(bulgePath(v, tr), st)

	case *model.Polyline3D:
		pts := make([]model.Point2D, len(v.Vertices))
		for i, vx := range v.Vertices {
			pts[i] = tr.Apply3(vx)
		}
		r.strokePoints(s, pts, v.Closed, v.Smooth, st)

	case *model.Spline:
		samples, err := spline.Of(v, r.opts.SplineSubdivisions)
		if err != nil {
			return err
		}
		if len(samples) <= 1 {
			return nil
		}
		pts := make([]model.Point2D, len(samples))
		for i, sp := range samples {
			pts[i] = tr.Apply3(sp)
		}
		var p path
		p.smoothCurve(pts, false)
		s.stroke(&p, st)

	case *model.Ellipse:
		rx := tr.Length(v.MajorAxis.Len())
		ry := tr.Length(v.MinorLength)
		// A counter-clockwise model rotation is clockwise-negative on the
		// page.
		s.ellipse(tr.Apply3(v.Center), rx, ry, -geom.EllipseAngle(v.MajorAxis), st)

	case *model.GenericPolyline:
		pts := make([]model.Point2D, len(v.Vertices))
		for i, vx := range v.Vertices {
			pts[i] = tr.Apply3(vx)
		}
		r.strokePoints(s, pts, v.Closed, v.Smooth, st)
	}
	return nil
}

func (r *Renderer) strokePoints(s surface, pts []model.Point2D, closed, smooth bool, st style) {
	if len(pts) < 2 {
		return
	}
	var p path
	if smooth {
		p.smoothCurve(pts, closed)
	} else {
		p.moveTo(pts[0])
		for _, pt := range pts[1:] {
			p.lineTo(pt)
		}
		if closed {
			p.close()
		}
	}
	s.stroke(&p, st)
}

// bulgePath builds the outline of a polyline segment by segment. Segments
// with a bulge become arcs; degenerate bulges fall back to straight lines.
func bulgePath(pl *model.Polyline2D, tr geom.Transform) *path {
	var p path
	n := len(pl.Vertices)
	p.moveTo(tr.Apply(pl.Vertices[0].Pos))
	for i := 0; i < pl.SegmentCount(); i++ {
		cur, next := pl.Vertices[i], pl.Vertices[(i+1)%n]
		arc, ok := geom.BulgeToArc(cur.Pos, next.Pos, cur.Bulge)
		if !ok {
			p.lineTo(tr.Apply(next.Pos))
			continue
		}
		from := cur.Pos.Sub(arc.Center)
		start := geom.Degrees(math.Atan2(from.Y, from.X))
		sweep := arc.Sweep()
		if cur.Bulge < 0 {
			sweep = -sweep
		}
		p.arcTo(tr.Apply(arc.Center), tr.Length(arc.Radius), start, sweep)
	}
	if pl.Closed {
		p.close()
	}
	return &p
}
