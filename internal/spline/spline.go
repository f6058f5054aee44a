// Package spline evaluates non-rational B-splines with De Boor's algorithm.
package spline

import (
	"errors"
	"fmt"
	"iter"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// ErrInvalidSpline reports a spline whose knot vector does not match its
// control points and degree.
var ErrInvalidSpline = errors.New("invalid spline")

// DefaultSubdivisions is the number of sample intervals used when none is
// configured.
const DefaultSubdivisions = 50

// EvaluateDeBoor returns the point at parameter t. If t lies at or past the
// last usable knot span (or the knot vector has no usable span) the last
// control point is returned.
func EvaluateDeBoor(t float64, degree int, ctrl []model.Point3D, knots []float64) model.Point3D {
	if len(ctrl) == 0 {
		return model.Point3D{}
	}

	span := -1
	for s := degree; s < len(knots)-degree-1; s++ {
		if knots[s] <= t && t < knots[s+1] {
			span = s
			break
		}
	}
	if span < 0 || span-degree < 0 || span >= len(ctrl) {
		return ctrl[len(ctrl)-1]
	}

	d := make([]model.Point3D, degree+1)
	copy(d, ctrl[span-degree:span+1])

	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			i := j + span - degree
			denom := knots[i+degree+1-r] - knots[i]
			alpha := 0.0
			if denom != 0 {
				alpha = (t - knots[i]) / denom
			}
			d[j] = d[j-1].Scale(1 - alpha).Add(d[j].Scale(alpha))
		}
	}
	return d[degree]
}

// Sample yields subdivisions+1 points at parameters evenly spaced from the
// first to the last knot, both included. The sequence is computed lazily and
// can be ranged over any number of times.
func Sample(ctrl []model.Point3D, degree int, knots []float64, subdivisions int) iter.Seq[model.Point3D] {
	return func(yield func(model.Point3D) bool) {
		if len(ctrl) == 0 || len(knots) == 0 || subdivisions < 1 {
			return
		}
		t0, t1 := knots[0], knots[len(knots)-1]
		for i := 0; i <= subdivisions; i++ {
			t := t0 + (t1-t0)*float64(i)/float64(subdivisions)
			if !yield(EvaluateDeBoor(t, degree, ctrl, knots)) {
				return
			}
		}
	}
}

// Points collects Sample into a slice.
func Points(ctrl []model.Point3D, degree int, knots []float64, subdivisions int) []model.Point3D {
	pts := make([]model.Point3D, 0, subdivisions+1)
	for p := range Sample(ctrl, degree, knots, subdivisions) {
		pts = append(pts, p)
	}
	return pts
}

// Validate checks the structural invariants De Boor evaluation relies on.
func Validate(s *model.Spline) error {
	if s.Degree < 1 {
		return fmt.Errorf("%w: degree %d", ErrInvalidSpline, s.Degree)
	}
	if len(s.ControlPoints) < s.Degree+1 {
		return fmt.Errorf("%w: %d control points for degree %d", ErrInvalidSpline, len(s.ControlPoints), s.Degree)
	}
	if want := len(s.ControlPoints) + s.Degree + 1; len(s.Knots) != want {
		return fmt.Errorf("%w: %d knots, want %d", ErrInvalidSpline, len(s.Knots), want)
	}
	for i := 1; i < len(s.Knots); i++ {
		if s.Knots[i] < s.Knots[i-1] {
			return fmt.Errorf("%w: knot %d decreases", ErrInvalidSpline, i)
		}
	}
	return nil
}

// Of samples a spline entity with the given number of subdivisions after
// validating it.
func Of(s *model.Spline, subdivisions int) ([]model.Point3D, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return Points(s.ControlPoints, s.Degree, s.Knots, subdivisions), nil
}
