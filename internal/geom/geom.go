// Package geom holds the 2D math shared by bounds computation, rendering
// and DXF rewriting: angle intervals, bulge arcs, bounding boxes and the
// model-to-device transform.
package geom

import (
	"math"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// Epsilon is the tolerance for comparing lengths and bulges against zero.
const Epsilon = 1e-9

// NormalizeAngle maps an angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// IsAngleBetween reports whether angle lies on the counter-clockwise sweep
// from start to end. All three are normalised first, so a start greater
// than end describes a sweep that crosses 0°.
func IsAngleBetween(angle, start, end float64) bool {
	angle = NormalizeAngle(angle)
	start = NormalizeAngle(start)
	end = NormalizeAngle(end)
	if start <= end {
		return angle >= start && angle <= end
	}
	return angle >= start || angle <= end
}

// SweepDegrees returns the counter-clockwise sweep from start to end in
// (0, 360]. Equal angles describe a full turn.
func SweepDegrees(start, end float64) float64 {
	sweep := NormalizeAngle(end - start)
	if sweep < Epsilon {
		return 360
	}
	return sweep
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// PolarPoint returns the point at angle deg and distance r from center.
func PolarPoint(center model.Point2D, r, deg float64) model.Point2D {
	rad := Radians(deg)
	return model.Point2D{X: center.X + r*math.Cos(rad), Y: center.Y + r*math.Sin(rad)}
}

// FlattenArc samples the counter-clockwise arc from start to end (degrees)
// with steps of at most maxStepDeg. Both endpoints are included, so a full
// turn repeats its first point last. A non-positive step means 10°.
func FlattenArc(center model.Point2D, r, start, end, maxStepDeg float64) []model.Point2D {
	if maxStepDeg <= 0 {
		maxStepDeg = 10
	}
	sweep := SweepDegrees(start, end)
	n := int(math.Ceil(sweep/maxStepDeg - Epsilon))
	if n < 1 {
		n = 1
	}
	pts := make([]model.Point2D, n+1)
	for i := range pts {
		pts[i] = PolarPoint(center, r, start+sweep*float64(i)/float64(n))
	}
	return pts
}

// ArcSegment is a circular arc swept counter-clockwise from Start to End
// (degrees).
type ArcSegment struct {
	Center model.Point2D
	Radius float64
	Start  float64
	End    float64
}

// Sweep returns the counter-clockwise sweep of the arc in degrees.
func (a ArcSegment) Sweep() float64 { return SweepDegrees(a.Start, a.End) }

// BulgeToArc converts the polyline segment from start to end with the given
// bulge into an arc. It reports false for a straight segment (bulge ~0) or a
// degenerate chord; callers draw or bound those as plain points.
//
// For a negative bulge the segment runs clockwise, so Start and End are
// swapped to keep the result counter-clockwise.
func BulgeToArc(start, end model.Point2D, bulge float64) (ArcSegment, bool) {
	if math.Abs(bulge) < Epsilon {
		return ArcSegment{}, false
	}
	chord := start.Dist(end)
	if chord < Epsilon {
		return ArcSegment{}, false
	}

	theta := 4 * math.Atan(math.Abs(bulge))
	radius := chord / (2 * math.Sin(theta/2))

	// Direction from start to centre: the chord direction turned by
	// ±(π/2 − θ/2), towards the side the arc curves around.
	chordAngle := math.Atan2(end.Y-start.Y, end.X-start.X)
	turn := math.Pi/2 - theta/2
	if bulge < 0 {
		turn = -turn
	}
	dir := chordAngle + turn
	center := model.Point2D{
		X: start.X + radius*math.Cos(dir),
		Y: start.Y + radius*math.Sin(dir),
	}

	startAngle := Degrees(math.Atan2(start.Y-center.Y, start.X-center.X))
	endAngle := Degrees(math.Atan2(end.Y-center.Y, end.X-center.X))
	if bulge < 0 {
		startAngle, endAngle = endAngle, startAngle
	}
	return ArcSegment{
		Center: center,
		Radius: radius,
		Start:  NormalizeAngle(startAngle),
		End:    NormalizeAngle(endAngle),
	}, true
}

// EllipseAngle returns the rotation of an ellipse's major axis in the XY
// plane, in degrees.
func EllipseAngle(major model.Point3D) float64 {
	return Degrees(math.Atan2(major.Y, major.X))
}

// MinorAxis returns the minor semi-axis vector of an ellipse: the direction
// normal × major scaled to length minor. A zero normal means +Z.
func MinorAxis(major, normal model.Point3D, minor float64) model.Point3D {
	if normal.Len() < Epsilon {
		normal = model.Point3D{Z: 1}
	}
	return normal.Cross(major).Unit().Scale(minor)
}
