package render

import (
	"image/color"
	"math"

	"github.com/piwi3910/SheetThumb/internal/model"
)

type segKind int

const (
	segMove segKind = iota
	segLine
	segCubic
	segArc
	segClose
)

// pathSeg is one drawing command in device space. Arc angles keep the
// model convention (degrees, positive = counter-clockwise as seen on the
// page) so that the Y flip is applied exactly once, by devicePolar.
type pathSeg struct {
	kind   segKind
	pts    [3]model.Point2D // move/line: pts[0]; cubic: c1, c2, end
	center model.Point2D
	radius float64
	start  float64
	sweep  float64
}

// path records the outline of one entity so that the raster and SVG
// surfaces draw it from the same commands.
type path struct {
	segs []pathSeg
	cur  model.Point2D // pen position after the last command
}

func (p *path) moveTo(pt model.Point2D) {
	p.segs = append(p.segs, pathSeg{kind: segMove, pts: [3]model.Point2D{pt}})
	p.cur = pt
}

func (p *path) lineTo(pt model.Point2D) {
	p.segs = append(p.segs, pathSeg{kind: segLine, pts: [3]model.Point2D{pt}})
	p.cur = pt
}

func (p *path) cubeTo(c1, c2, pt model.Point2D) {
	p.segs = append(p.segs, pathSeg{kind: segCubic, pts: [3]model.Point2D{c1, c2, pt}})
	p.cur = pt
}

// arcTo appends a circular arc around a device-space center. The current
// point must already lie on the arc at angle start.
func (p *path) arcTo(center model.Point2D, r, start, sweep float64) {
	p.segs = append(p.segs, pathSeg{kind: segArc, center: center, radius: r, start: start, sweep: sweep})
	p.cur = devicePolar(center, r, start+sweep)
}

func (p *path) close() {
	p.segs = append(p.segs, pathSeg{kind: segClose})
}

func (p *path) empty() bool { return len(p.segs) < 2 }

// isLine reports whether the path is a single straight segment.
func (p *path) isLine() bool {
	return len(p.segs) == 2 && p.segs[0].kind == segMove && p.segs[1].kind == segLine
}

// devicePolar returns the point at angle deg on a circle in device space.
// Device Y grows downward, so a counter-clockwise model angle subtracts
// from Y.
func devicePolar(center model.Point2D, r, deg float64) model.Point2D {
	rad := deg * math.Pi / 180
	return model.Point2D{X: center.X + r*math.Cos(rad), Y: center.Y - r*math.Sin(rad)}
}

// arcCubics approximates an arc with cubic Béziers of at most 90° each.
// Each element holds c1, c2 and the end point.
func arcCubics(center model.Point2D, r, start, sweep float64) [][3]model.Point2D {
	n := int(math.Ceil(math.Abs(sweep) / 90))
	if n == 0 {
		return nil
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step*math.Pi/180/4)

	// tangent is the derivative of devicePolar with respect to the angle.
	tangent := func(deg float64) model.Point2D {
		rad := deg * math.Pi / 180
		return model.Point2D{X: -r * math.Sin(rad), Y: -r * math.Cos(rad)}
	}

	out := make([][3]model.Point2D, 0, n)
	a0 := start
	for i := 0; i < n; i++ {
		a1 := a0 + step
		p0 := devicePolar(center, r, a0)
		p3 := devicePolar(center, r, a1)
		c1 := p0.Add(tangent(a0).Scale(k))
		c2 := p3.Sub(tangent(a1).Scale(k))
		out = append(out, [3]model.Point2D{c1, c2, p3})
		a0 = a1
	}
	return out
}

// cardinalTension controls how tightly smooth curves follow their points.
const cardinalTension = 0.5

// smoothCurve appends a cardinal spline through pts as cubic Béziers. The
// end points are duplicated so the curve starts and ends on them. A closed
// curve wraps around to the first point.
func (p *path) smoothCurve(pts []model.Point2D, closed bool) {
	n := len(pts)
	if n < 2 {
		return
	}
	at := func(i int) model.Point2D {
		if closed {
			return pts[((i%n)+n)%n]
		}
		return pts[max(0, min(n-1, i))]
	}

	segments := n - 1
	if closed {
		segments = n
	}
	p.moveTo(pts[0])
	for i := 0; i < segments; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		c1 := p1.Add(p2.Sub(p0).Scale(cardinalTension / 3))
		c2 := p2.Sub(p3.Sub(p1).Scale(cardinalTension / 3))
		p.cubeTo(c1, c2, p2)
	}
	if closed {
		p.close()
	}
}

// style is the stroke an entity is drawn with.
type style struct {
	color    color.RGBA
	lineType model.LineType
}

// surface is a drawing target. Coordinates are in device space.
type surface interface {
	circle(center model.Point2D, r float64, st style)
	// ellipse draws an ellipse with radii rx, ry rotated by rot degrees,
	// positive rotating clockwise on the page.
	ellipse(center model.Point2D, rx, ry, rot float64, st style)
	stroke(p *path, st style)
}
