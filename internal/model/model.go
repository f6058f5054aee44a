package model

import "math"

// Point2D represents a 2D coordinate in drawing units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point2D) Add(q Point2D) Point2D { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point2D) Scale(s float64) Point2D {
	return Point2D{X: p.X * s, Y: p.Y * s}
}

// Len returns the length of p seen as a vector.
func (p Point2D) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point2D) Dist(q Point2D) float64 { return p.Sub(q).Len() }

// Point3D represents a 3D coordinate. Thumbnails only use X and Y.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY drops the Z component.
func (p Point3D) XY() Point2D { return Point2D{X: p.X, Y: p.Y} }

func (p Point3D) Add(q Point3D) Point3D { return Point3D{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z} }
func (p Point3D) Sub(q Point3D) Point3D { return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z} }
func (p Point3D) Scale(s float64) Point3D {
	return Point3D{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Cross returns the cross product p × q.
func (p Point3D) Cross(q Point3D) Point3D {
	return Point3D{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Len returns the length of p seen as a vector.
func (p Point3D) Len() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z) }

// Unit returns p scaled to length 1, or the zero vector if p has no length.
func (p Point3D) Unit() Point3D {
	l := p.Len()
	if l == 0 {
		return Point3D{}
	}
	return p.Scale(1 / l)
}
