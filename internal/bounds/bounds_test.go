package bounds

import (
	"math"
	"testing"

	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/spline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) model.Point2D { return model.Point2D{X: x, Y: y} }

func unitSquare() *model.Polyline2D {
	return &model.Polyline2D{
		Vertices: []model.Vertex{{Pos: pt(0, 0)}, {Pos: pt(1, 0)}, {Pos: pt(1, 1)}, {Pos: pt(0, 1)}},
		Closed:   true,
	}
}

func TestCompute_Empty(t *testing.T) {
	b, err := Compute(nil, Options{})
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
	assert.True(t, math.IsInf(b.MinX, 1))
	assert.True(t, math.IsInf(b.MaxX, -1))
}

func TestCompute_Line(t *testing.T) {
	b, err := Compute([]model.Entity{&model.Line{Start: pt(5, -1), End: pt(-2, 3)}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, -2.0, b.MinX)
	assert.Equal(t, -1.0, b.MinY)
	assert.Equal(t, 5.0, b.MaxX)
	assert.Equal(t, 3.0, b.MaxY)
}

func TestCompute_Circle(t *testing.T) {
	b, err := Compute([]model.Entity{&model.Circle{Center: pt(1, 2), Radius: 3}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, -2.0, b.MinX)
	assert.Equal(t, -1.0, b.MinY)
	assert.Equal(t, 4.0, b.MaxX)
	assert.Equal(t, 5.0, b.MaxY)
}

func TestCompute_ArcIncludesCardinalExtremum(t *testing.T) {
	arc := &model.Arc{Center: pt(0, 0), Radius: 5, StartAngle: 0, EndAngle: 180}
	b, err := Compute([]model.Entity{arc}, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, b.MaxY, 1e-9, "top of the arc at 90° must be included")
	assert.InDelta(t, 0.0, b.MinY, 1e-9)
	assert.InDelta(t, -5.0, b.MinX, 1e-9)
	assert.InDelta(t, 5.0, b.MaxX, 1e-9)
}

func TestCompute_ArcWithoutCardinals(t *testing.T) {
	arc := &model.Arc{Center: pt(0, 0), Radius: 2, StartAngle: 10, EndAngle: 80}
	b, err := Compute([]model.Entity{arc}, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 2*math.Cos(80*math.Pi/180), b.MinX, 1e-9)
	assert.InDelta(t, 2*math.Cos(10*math.Pi/180), b.MaxX, 1e-9)
	assert.Less(t, b.MaxY, 2.0)
}

func TestCompute_UnitSquare(t *testing.T) {
	b, err := Compute([]model.Entity{unitSquare()}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.MinX)
	assert.Equal(t, 0.0, b.MinY)
	assert.Equal(t, 1.0, b.MaxX)
	assert.Equal(t, 1.0, b.MaxY)
}

func TestCompute_PolylineBulge(t *testing.T) {
	// A slot: two straight edges joined by semicircular ends.
	slot := &model.Polyline2D{
		Vertices: []model.Vertex{
			{Pos: pt(0, 0)},
			{Pos: pt(4, 0), Bulge: 1},
			{Pos: pt(4, 2)},
			{Pos: pt(0, 2), Bulge: 1},
		},
		Closed: true,
	}
	b, err := Compute([]model.Entity{slot}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, b.MinX, 1e-9, "closing bulge segment reaches x=-1")
	assert.InDelta(t, 5.0, b.MaxX, 1e-9)
	assert.InDelta(t, 0.0, b.MinY, 1e-9)
	assert.InDelta(t, 2.0, b.MaxY, 1e-9)
}

func TestCompute_OpenPolylineIgnoresClosingBulge(t *testing.T) {
	pl := &model.Polyline2D{
		Vertices: []model.Vertex{{Pos: pt(0, 0)}, {Pos: pt(2, 0), Bulge: 1}},
		Closed:   false,
	}
	b, err := Compute([]model.Entity{pl}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, b.MinY, 1e-12, "last vertex bulge has no segment when open")
	assert.InDelta(t, 0.0, b.MaxY, 1e-12)
}

func TestCompute_Polyline3DIgnoresZ(t *testing.T) {
	pl := &model.Polyline3D{Vertices: []model.Point3D{{X: 1, Y: 1, Z: -50}, {X: 3, Y: -2, Z: 80}}}
	b, err := Compute([]model.Entity{pl}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.MinX)
	assert.Equal(t, -2.0, b.MinY)
	assert.Equal(t, 3.0, b.MaxX)
	assert.Equal(t, 1.0, b.MaxY)
}

func TestCompute_SplineUsesCurveNotControlPoints(t *testing.T) {
	s := &model.Spline{
		ControlPoints: []model.Point3D{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0}},
		Degree:        3,
		Knots:         []float64{0, 0, 0, 0, 1, 1, 1, 1},
	}
	b, err := Compute([]model.Entity{s}, Options{SplineSubdivisions: 50})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, b.MaxY, 1e-9, "curve peaks below its control polygon")
	assert.InDelta(t, 0.0, b.MinX, 1e-12)
	assert.InDelta(t, 4.0, b.MaxX, 1e-12)
}

func TestCompute_InvalidSpline(t *testing.T) {
	s := &model.Spline{
		ControlPoints: []model.Point3D{{X: 0}, {X: 1}},
		Degree:        3,
		Knots:         []float64{0, 1},
	}
	_, err := Compute([]model.Entity{&model.Line{End: pt(1, 1)}, s}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, spline.ErrInvalidSpline)
	assert.Contains(t, err.Error(), "entity 1 (SPLINE)")
}

func TestCompute_EllipseAxisAligned(t *testing.T) {
	e := &model.Ellipse{
		Center:      model.Point3D{X: 10, Y: 5},
		MajorAxis:   model.Point3D{X: 4},
		MinorLength: 2,
		Normal:      model.Point3D{Z: 1},
	}
	b, err := Compute([]model.Entity{e}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, b.MinX, 1e-9)
	assert.InDelta(t, 14.0, b.MaxX, 1e-9)
	assert.InDelta(t, 3.0, b.MinY, 1e-9)
	assert.InDelta(t, 7.0, b.MaxY, 1e-9)
}

func TestCompute_EllipseRotated(t *testing.T) {
	e := &model.Ellipse{
		MajorAxis:   model.Point3D{X: 3, Y: 3},
		MinorLength: math.Sqrt2,
		Normal:      model.Point3D{Z: 1},
	}
	b, err := Compute([]model.Entity{e}, Options{})
	require.NoError(t, err)
	// Corners: ±(3,3) ± (-1,1).
	assert.InDelta(t, -4.0, b.MinX, 1e-9)
	assert.InDelta(t, 4.0, b.MaxX, 1e-9)
	assert.InDelta(t, -4.0, b.MinY, 1e-9)
	assert.InDelta(t, 4.0, b.MaxY, 1e-9)
}

func TestCompute_GenericPolyline(t *testing.T) {
	g := &model.GenericPolyline{
		Source:   "POLYFACE",
		Vertices: []model.Point3D{{X: -1, Y: 0}, {X: 2, Y: 7, Z: 3}},
	}
	b, err := Compute([]model.Entity{g}, Options{})
	require.NoError(t, err)
	assert.Equal(t, -1.0, b.MinX)
	assert.Equal(t, 7.0, b.MaxY)
}

func TestCompute_MixedIsMonotone(t *testing.T) {
	sets := [][]model.Entity{
		{&model.Line{Start: pt(3, 3), End: pt(3, 3)}},
		{&model.Circle{Center: pt(-5, 2), Radius: 0}},
		{&model.Arc{Center: pt(1, 1), Radius: 1, StartAngle: 350, EndAngle: 10}},
		{unitSquare(), &model.Line{Start: pt(-10, 4), End: pt(0, 0)}},
		{&model.Polyline3D{Vertices: []model.Point3D{{X: 2, Y: 2}}}},
	}
	for i, set := range sets {
		b, err := Compute(set, Options{})
		require.NoError(t, err)
		assert.LessOrEqual(t, b.MinX, b.MaxX, "set %d", i)
		assert.LessOrEqual(t, b.MinY, b.MaxY, "set %d", i)
	}
}

func TestOfDrawing(t *testing.T) {
	d := model.NewDrawing(model.R2000)
	d.Add(unitSquare(), &model.Circle{Center: pt(5, 5), Radius: 1})
	b, err := OfDrawing(d, Options{})
	require.NoError(t, err)
	assert.Equal(t, 6.0, b.MaxX)
	assert.Equal(t, 0.0, b.MinY)
}
