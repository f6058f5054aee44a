package importer

import (
	"fmt"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// POLYLINE flags (group 70).
const (
	polyClosed      = 1
	polyCurveFit    = 2
	polySplineFit   = 4
	poly3D          = 8
	polyMesh        = 16
	polyMeshClosedN = 32
	polyFace        = 64
)

// VERTEX flags (group 70).
const (
	vertexSplineFrame = 16
	vertexMesh        = 64
	vertexFace        = 128
)

// LWPOLYLINE flags (group 70).
const lwClosed = 1

// fieldReader accumulates the first conversion error so the per-entity
// parsers can read groups without checking every value.
type fieldReader struct {
	err error
}

func (r *fieldReader) float(t tag) float64 {
	f, err := t.float()
	if err != nil && r.err == nil {
		r.err = err
	}
	return f
}

func (r *fieldReader) int(t tag) int {
	i, err := t.int()
	if err != nil && r.err == nil {
		r.err = err
	}
	return i
}

// common reads the attributes every entity carries. It reports whether t
// was one of them.
func (r *fieldReader) common(p *model.Props, t tag) bool {
	switch t.code {
	case 8:
		p.Layer = t.str()
	case 6:
		p.LineType = t.str()
	case 62:
		p.Color.Index = r.int(t)
	case 420:
		p.Color.TrueColor = uint32(r.int(t)) & 0xFFFFFF
		p.Color.HasTrue = true
	default:
		return false
	}
	return true
}

func defaultProps() model.Props {
	return model.Props{Layer: "0", Color: model.ByLayerColor}
}

func parseLine(tags []tag) (*model.Line, error) {
	var r fieldReader
	e := &model.Line{Props: defaultProps()}
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		switch t.code {
		case 10:
			e.Start.X = r.float(t)
		case 20:
			e.Start.Y = r.float(t)
		case 11:
			e.End.X = r.float(t)
		case 21:
			e.End.Y = r.float(t)
		}
	}
	return e, r.err
}

func parseCircle(tags []tag) (*model.Circle, error) {
	var r fieldReader
	e := &model.Circle{Props: defaultProps()}
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		switch t.code {
		case 10:
			e.Center.X = r.float(t)
		case 20:
			e.Center.Y = r.float(t)
		case 40:
			e.Radius = r.float(t)
		}
	}
	return e, r.err
}

func parseArc(tags []tag) (*model.Arc, error) {
	var r fieldReader
	e := &model.Arc{Props: defaultProps()}
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		switch t.code {
		case 10:
			e.Center.X = r.float(t)
		case 20:
			e.Center.Y = r.float(t)
		case 40:
			e.Radius = r.float(t)
		case 50:
			e.StartAngle = r.float(t)
		case 51:
			e.EndAngle = r.float(t)
		}
	}
	return e, r.err
}

func parseLwPolyline(tags []tag) (*model.Polyline2D, error) {
	var r fieldReader
	e := &model.Polyline2D{Props: defaultProps()}
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		last := len(e.Vertices) - 1
		switch t.code {
		case 70:
			e.Closed = r.int(t)&lwClosed != 0
		case 10:
			e.Vertices = append(e.Vertices, model.Vertex{Pos: model.Point2D{X: r.float(t)}})
		case 20:
			if last >= 0 {
				e.Vertices[last].Pos.Y = r.float(t)
			}
		case 42:
			if last >= 0 {
				e.Vertices[last].Bulge = r.float(t)
			}
		}
	}
	return e, r.err
}

type polyVertex struct {
	pos   model.Point3D
	bulge float64
	flags int
}

// polyline reads a POLYLINE header and the VERTEX records up to SEQEND.
func (p *parser) polyline(header []tag) (model.Entity, error) {
	var r fieldReader
	props := defaultProps()
	flags := 0
	for _, t := range header {
		if r.common(&props, t) {
			continue
		}
		if t.code == 70 {
			flags = r.int(t)
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	var verts []polyVertex
	for !p.done() {
		t := p.peek()
		if t.code != 0 {
			p.pos++
			continue
		}
		switch t.str() {
		case "VERTEX":
			p.pos++
			v := polyVertex{}
			for _, vt := range p.record() {
				switch vt.code {
				case 10:
					v.pos.X = r.float(vt)
				case 20:
					v.pos.Y = r.float(vt)
				case 30:
					v.pos.Z = r.float(vt)
				case 42:
					v.bulge = r.float(vt)
				case 70:
					v.flags = r.int(vt)
				}
			}
			if r.err != nil {
				return nil, fmt.Errorf("line %d: VERTEX: %w", t.line, r.err)
			}
			// Spline frame points and polyface face records carry no
			// drawable position.
			if v.flags&vertexSplineFrame == 0 && v.flags&(vertexFace|vertexMesh) != vertexFace {
				verts = append(verts, v)
			}
			continue
		case "SEQEND":
			p.pos++
			p.record()
		}
		// SEQEND or a missing terminator: the next record is not ours.
		break
	}

	closed := flags&polyClosed != 0
	smooth := flags&(polyCurveFit|polySplineFit) != 0

	switch {
	case flags&(polyMesh|polyFace) != 0:
		g := &model.GenericPolyline{Props: props, Source: "POLYFACE", Closed: closed || flags&polyMeshClosedN != 0, Smooth: smooth}
		if flags&polyMesh != 0 {
			g.Source = "MESH"
		}
		for _, v := range verts {
			g.Vertices = append(g.Vertices, v.pos)
		}
		return g, nil

	case flags&poly3D != 0:
		pl := &model.Polyline3D{Props: props, Closed: closed, Smooth: smooth}
		for _, v := range verts {
			pl.Vertices = append(pl.Vertices, v.pos)
		}
		return pl, nil

	default:
		pl := &model.Polyline2D{Props: props, Closed: closed, Smooth: smooth}
		for _, v := range verts {
			pl.Vertices = append(pl.Vertices, model.Vertex{Pos: v.pos.XY(), Bulge: v.bulge})
		}
		return pl, nil
	}
}

func parseSpline(tags []tag) (*model.Spline, error) {
	var r fieldReader
	e := &model.Spline{Props: defaultProps()}
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		last := len(e.ControlPoints) - 1
		switch t.code {
		case 71:
			e.Degree = r.int(t)
		case 40:
			e.Knots = append(e.Knots, r.float(t))
		case 10:
			e.ControlPoints = append(e.ControlPoints, model.Point3D{X: r.float(t)})
		case 20:
			if last >= 0 {
				e.ControlPoints[last].Y = r.float(t)
			}
		case 30:
			if last >= 0 {
				e.ControlPoints[last].Z = r.float(t)
			}
		}
	}
	return e, r.err
}

func parseEllipse(tags []tag) (*model.Ellipse, error) {
	var r fieldReader
	e := &model.Ellipse{Props: defaultProps(), Normal: model.Point3D{Z: 1}}
	ratio := 1.0
	for _, t := range tags {
		if r.common(&e.Props, t) {
			continue
		}
		switch t.code {
		case 10:
			e.Center.X = r.float(t)
		case 20:
			e.Center.Y = r.float(t)
		case 30:
			e.Center.Z = r.float(t)
		case 11:
			e.MajorAxis.X = r.float(t)
		case 21:
			e.MajorAxis.Y = r.float(t)
		case 31:
			e.MajorAxis.Z = r.float(t)
		case 40:
			ratio = r.float(t)
		case 210:
			e.Normal.X = r.float(t)
		case 220:
			e.Normal.Y = r.float(t)
		case 230:
			e.Normal.Z = r.float(t)
		}
	}
	e.MinorLength = ratio * e.MajorAxis.Len()
	return e, r.err
}
