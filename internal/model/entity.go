package model

// Kind identifies an entity variant.
type Kind int

const (
	KindLine Kind = iota
	KindCircle
	KindArc
	KindPolyline2D
	KindPolyline3D
	KindSpline
	KindEllipse
	KindGenericPolyline
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "LINE"
	case KindCircle:
		return "CIRCLE"
	case KindArc:
		return "ARC"
	case KindPolyline2D:
		return "LWPOLYLINE"
	case KindPolyline3D:
		return "POLYLINE3D"
	case KindSpline:
		return "SPLINE"
	case KindEllipse:
		return "ELLIPSE"
	default:
		return "POLYLINE"
	}
}

// Entity is one geometric record of a drawing. The set of implementations
// is closed: only the types in this package satisfy it.
type Entity interface {
	Kind() Kind
	Attrs() *Props
	isEntity()
}

// Props holds the attributes shared by every entity.
type Props struct {
	Layer    string    `json:"layer"`
	Color    ColorSpec `json:"color"`
	LineType string    `json:"line_type,omitempty"`
}

// Line is a straight segment.
type Line struct {
	Props
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// Circle is a full circle.
type Circle struct {
	Props
	Center Point2D `json:"center"`
	Radius float64 `json:"radius"`
}

// Arc is a circular arc swept counter-clockwise from StartAngle to EndAngle
// (degrees).
type Arc struct {
	Props
	Center     Point2D `json:"center"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

// Vertex is a 2D polyline vertex. Bulge encodes an arc to the next vertex
// as tan(included/4); zero means a straight segment, negative means clockwise.
type Vertex struct {
	Pos   Point2D `json:"pos"`
	Bulge float64 `json:"bulge,omitempty"`
}

// Polyline2D is a planar polyline with optional bulge arcs.
type Polyline2D struct {
	Props
	Vertices []Vertex `json:"vertices"`
	Closed   bool     `json:"closed"`
	Smooth   bool     `json:"smooth"` // curve-fit or spline-fit flag
}

// SegmentCount returns the number of vertex-to-vertex segments, including
// the closing one for closed polylines.
func (p *Polyline2D) SegmentCount() int {
	return segmentCount(len(p.Vertices), p.Closed)
}

// Polyline3D is a polyline with 3D vertices.
type Polyline3D struct {
	Props
	Vertices []Point3D `json:"vertices"`
	Closed   bool      `json:"closed"`
	Smooth   bool      `json:"smooth"`
}

// Spline is a non-rational B-spline.
type Spline struct {
	Props
	ControlPoints []Point3D `json:"control_points"`
	Degree        int       `json:"degree"`
	Knots         []float64 `json:"knots"`
}

// Ellipse is a full ellipse. MajorAxis is the vector from the centre to the
// end of the major axis.
type Ellipse struct {
	Props
	Center      Point3D `json:"center"`
	MajorAxis   Point3D `json:"major_axis"`
	MinorLength float64 `json:"minor_length"`
	Normal      Point3D `json:"normal"`
}

// GenericPolyline is the fallback for polyline-like records that none of
// the typed variants model, such as polyface and polygon meshes. Only the
// raw vertex positions are kept.
type GenericPolyline struct {
	Props
	Source   string    `json:"source"` // DXF record kind, e.g. "POLYFACE"
	Vertices []Point3D `json:"vertices"`
	Closed   bool      `json:"closed"`
	Smooth   bool      `json:"smooth"`
}

func (e *Line) Kind() Kind            { return KindLine }
func (e *Circle) Kind() Kind          { return KindCircle }
func (e *Arc) Kind() Kind             { return KindArc }
func (e *Polyline2D) Kind() Kind      { return KindPolyline2D }
func (e *Polyline3D) Kind() Kind      { return KindPolyline3D }
func (e *Spline) Kind() Kind          { return KindSpline }
func (e *Ellipse) Kind() Kind         { return KindEllipse }
func (e *GenericPolyline) Kind() Kind { return KindGenericPolyline }

func (e *Line) Attrs() *Props            { return &e.Props }
func (e *Circle) Attrs() *Props          { return &e.Props }
func (e *Arc) Attrs() *Props             { return &e.Props }
func (e *Polyline2D) Attrs() *Props      { return &e.Props }
func (e *Polyline3D) Attrs() *Props      { return &e.Props }
func (e *Spline) Attrs() *Props          { return &e.Props }
func (e *Ellipse) Attrs() *Props         { return &e.Props }
func (e *GenericPolyline) Attrs() *Props { return &e.Props }

func (*Line) isEntity()            {}
func (*Circle) isEntity()          {}
func (*Arc) isEntity()             {}
func (*Polyline2D) isEntity()      {}
func (*Polyline3D) isEntity()      {}
func (*Spline) isEntity()          {}
func (*Ellipse) isEntity()         {}
func (*GenericPolyline) isEntity() {}

func segmentCount(n int, closed bool) int {
	if n < 2 {
		return 0
	}
	if closed {
		return n
	}
	return n - 1
}

// Clone returns a deep copy of e. Slices are copied so the result never
// aliases the original.
func Clone(e Entity) Entity {
	switch v := e.(type) {
	case *Line:
		c := *v
		return &c
	case *Circle:
		c := *v
		return &c
	case *Arc:
		c := *v
		return &c
	case *Polyline2D:
		c := *v
		c.Vertices = append([]Vertex(nil), v.Vertices...)
		return &c
	case *Polyline3D:
		c := *v
		c.Vertices = append([]Point3D(nil), v.Vertices...)
		return &c
	case *Spline:
		c := *v
		c.ControlPoints = append([]Point3D(nil), v.ControlPoints...)
		c.Knots = append([]float64(nil), v.Knots...)
		return &c
	case *Ellipse:
		c := *v
		return &c
	case *GenericPolyline:
		c := *v
		c.Vertices = append([]Point3D(nil), v.Vertices...)
		return &c
	default:
		return nil
	}
}
