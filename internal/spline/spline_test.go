package spline

import (
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubicBezier is a clamped cubic B-spline, which is exactly a Bézier curve.
func cubicBezier() ([]model.Point3D, []float64) {
	ctrl := []model.Point3D{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0}}
	knots := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	return ctrl, knots
}

func bezierAt(ctrl []model.Point3D, t float64) model.Point3D {
	u := 1 - t
	b0, b1, b2, b3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return ctrl[0].Scale(b0).Add(ctrl[1].Scale(b1)).Add(ctrl[2].Scale(b2)).Add(ctrl[3].Scale(b3))
}

func TestEvaluateDeBoor_MatchesBezier(t *testing.T) {
	ctrl, knots := cubicBezier()
	for _, u := range []float64{0, 0.1, 0.25, 0.5, 0.8, 0.99} {
		got := EvaluateDeBoor(u, 3, ctrl, knots)
		want := bezierAt(ctrl, u)
		assert.InDelta(t, want.X, got.X, 1e-12, "x at t=%v", u)
		assert.InDelta(t, want.Y, got.Y, 1e-12, "y at t=%v", u)
	}
}

func TestEvaluateDeBoor_Linear(t *testing.T) {
	ctrl := []model.Point3D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	knots := []float64{0, 0, 1, 2, 2}

	p := EvaluateDeBoor(0.5, 1, ctrl, knots)
	assert.InDelta(t, 0.5, p.X, 1e-12)
	assert.InDelta(t, 0.5, p.Y, 1e-12)

	p = EvaluateDeBoor(1.5, 1, ctrl, knots)
	assert.InDelta(t, 1.5, p.X, 1e-12)
	assert.InDelta(t, 0.5, p.Y, 1e-12)
}

func TestEvaluateDeBoor_ClampsPastLastSpan(t *testing.T) {
	ctrl, knots := cubicBezier()
	last := ctrl[len(ctrl)-1]

	for _, u := range []float64{1, 1.5, 100} {
		p := EvaluateDeBoor(u, 3, ctrl, knots)
		assert.Equal(t, last, p, "t=%v returns the last control point", u)
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
}

func TestEvaluateDeBoor_MalformedKnotsFallBack(t *testing.T) {
	ctrl, _ := cubicBezier()
	p := EvaluateDeBoor(0.5, 3, ctrl, []float64{0, 1})
	assert.Equal(t, ctrl[3], p, "no usable span clamps to the last control point")

	assert.Equal(t, model.Point3D{}, EvaluateDeBoor(0, 3, nil, nil))
}

func TestSample_CountAndEndpoints(t *testing.T) {
	ctrl, knots := cubicBezier()
	pts := Points(ctrl, 3, knots, 50)

	require.Len(t, pts, 51)
	assert.Equal(t, ctrl[0], pts[0])
	assert.Equal(t, ctrl[3], pts[50])
	assert.InDelta(t, 1.5, pts[25].Y, 1e-12, "midpoint of the curve")
}

func TestSample_Restartable(t *testing.T) {
	ctrl, knots := cubicBezier()
	seq := Sample(ctrl, 3, knots, 4)

	var first, second []model.Point3D
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	assert.Len(t, first, 5)
	assert.Equal(t, first, second)
}

func TestSample_EarlyBreak(t *testing.T) {
	ctrl, knots := cubicBezier()
	n := 0
	for range Sample(ctrl, 3, knots, 50) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestSample_Empty(t *testing.T) {
	assert.Empty(t, Points(nil, 3, nil, 50))
	ctrl, knots := cubicBezier()
	assert.Empty(t, Points(ctrl, 3, knots, 0))
}

func TestValidate(t *testing.T) {
	ctrl, knots := cubicBezier()
	require.NoError(t, Validate(&model.Spline{ControlPoints: ctrl, Degree: 3, Knots: knots}))

	tests := []struct {
		name string
		s    model.Spline
	}{
		{"degree zero", model.Spline{ControlPoints: ctrl, Degree: 0, Knots: knots}},
		{"too few control points", model.Spline{ControlPoints: ctrl[:2], Degree: 3, Knots: knots}},
		{"wrong knot count", model.Spline{ControlPoints: ctrl, Degree: 3, Knots: knots[:6]}},
		{"decreasing knots", model.Spline{ControlPoints: ctrl, Degree: 3, Knots: []float64{0, 0, 0, 1, 0.5, 1, 1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSpline))
		})
	}
}

func TestOf(t *testing.T) {
	ctrl, knots := cubicBezier()
	pts, err := Of(&model.Spline{ControlPoints: ctrl, Degree: 3, Knots: knots}, 10)
	require.NoError(t, err)
	assert.Len(t, pts, 11)

	_, err = Of(&model.Spline{ControlPoints: ctrl, Degree: 3}, 10)
	assert.ErrorIs(t, err, ErrInvalidSpline)
}
