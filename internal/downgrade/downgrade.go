// Package downgrade rewrites DXF files at an older format version so that
// older CAM software can read them.
package downgrade

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/SheetThumb/internal/geom"
	"github.com/piwi3910/SheetThumb/internal/importer"
	"github.com/piwi3910/SheetThumb/internal/logging"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedVersion reports a target tag outside the supported set.
	ErrUnsupportedVersion = errors.New("unsupported DXF version")
	// ErrSave reports a failure while writing the rewritten file.
	ErrSave = errors.New("cannot save DXF file")
	// ErrLossy reports a source holding data the writer cannot reproduce.
	ErrLossy = errors.New("DXF file cannot be rewritten without loss")
)

// UnsupportedVersionError is returned, and the file left alone, when the
// target tag has no mapping.
type UnsupportedVersionError struct {
	Tag string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%v %q (supported: %v)", ErrUnsupportedVersion, e.Tag, model.SupportedVersionTags())
}

func (e *UnsupportedVersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// LossError is returned, and the file left alone, when rewriting would drop
// records or attributes of the source.
type LossError struct {
	Path   string
	Losses []string
}

func (e *LossError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Path, ErrLossy, strings.Join(e.Losses, ", "))
}

func (e *LossError) Is(target error) bool { return target == ErrLossy }

// SaveError wraps a failure while building or writing the new file.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrSave, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSave }

// ellipseSegments is the number of chords a flattened ellipse is written
// with.
const ellipseSegments = 72

// Rewriter rewrites files in place.
type Rewriter struct {
	logger *zap.Logger

	// saveAs writes a drawing; replaced in tests.
	saveAs func(d *drawing.Drawing, path string) error
}

// New returns a Rewriter.
func New(logger *zap.Logger) *Rewriter {
	return &Rewriter{
		logger: logging.OrNop(logger),
		saveAs: (*drawing.Drawing).SaveAs,
	}
}

// Rewrite replaces the file at path with a copy written at the version
// named by tag. An unknown tag (including "R12") leaves the file untouched
// and returns an UnsupportedVersionError. A source holding anything the
// writer cannot reproduce is left untouched with a LossError. On any other
// failure the original file is also left untouched.
func (w *Rewriter) Rewrite(path, tag string) (err error) {
	log := w.logger.With(zap.String("file", path), zap.String("version", tag))

	v, ok := model.ParseVersionTag(tag)
	if !ok {
		err := &UnsupportedVersionError{Tag: tag}
		log.Info("skipping rewrite", zap.Error(err))
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &SaveError{Path: path, Err: fmt.Errorf("panic: %v", rec)}
			log.Error("rewrite failed", zap.Error(err))
		}
	}()

	src, err := importer.LoadDXF(path)
	if err != nil {
		log.Warn("cannot load drawing", zap.Error(err))
		return err
	}
	if losses := Losses(src); len(losses) > 0 {
		err := &LossError{Path: path, Losses: losses}
		log.Warn("skipping rewrite", zap.Strings("losses", losses))
		return err
	}

	out, written, err := w.build(Clone(src, v))
	if err != nil {
		err = &SaveError{Path: path, Err: err}
		log.Error("rewrite failed", zap.Error(err))
		return err
	}

	if err := w.replace(path, out, v, written); err != nil {
		err = &SaveError{Path: path, Err: err}
		log.Error("rewrite failed", zap.Error(err))
		return err
	}

	log.Info("rewrote drawing",
		zap.String("from", src.ACADVer),
		zap.Int("entities", written))
	return nil
}

// replace saves out next to path, stamps the version, checks the result
// can be read back and renames it over path.
func (w *Rewriter) replace(path string, out *drawing.Drawing, v model.DXFVersion, written int) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpName)
		}
	}()

	if err := w.saveAs(out, tmpName); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := stampFile(tmpName, v.ACADCode()); err != nil {
		return err
	}

	check, err := importer.LoadDXF(tmpName)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if check.ACADVer != v.ACADCode() {
		return fmt.Errorf("verify: version %q, want %q", check.ACADVer, v.ACADCode())
	}
	if len(check.Entities) != written {
		return fmt.Errorf("verify: %d entities read back, %d written", len(check.Entities), written)
	}

	info, err := os.Stat(path)
	if err == nil {
		os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	ok = true
	return nil
}

// Clone returns a deep copy of d stamped with version v. The copy shares
// no entities, vertices or layers with d.
func Clone(d *model.Drawing, v model.DXFVersion) *model.Drawing {
	out := model.NewDrawing(v)
	out.Path = d.Path
	for name, layer := range d.Layers {
		out.Layers[name] = layer
	}
	out.Entities = make([]model.Entity, 0, len(d.Entities))
	for _, e := range d.Entities {
		out.Entities = append(out.Entities, model.Clone(e))
	}
	return out
}

// Losses lists what rewriting d would drop: records the loader skipped,
// polyface meshes, entity colours and line types, and layer states the
// writer has no field for. An empty result means the rewrite is safe.
// Ellipses are written as closed polylines and are not counted.
func Losses(d *model.Drawing) []string {
	var out []string

	kinds := make([]string, 0, len(d.Skipped))
	for kind := range d.Skipped {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		out = append(out, fmt.Sprintf("%d %s", d.Skipped[kind], kind))
	}

	var meshes, colours, lineTypes int
	for _, e := range d.Entities {
		if _, ok := e.(*model.GenericPolyline); ok {
			meshes++
		}
		a := e.Attrs()
		if !a.Color.ByLayer() {
			colours++
		}
		if a.LineType != "" && !strings.EqualFold(a.LineType, "BYLAYER") {
			lineTypes++
		}
	}
	if meshes > 0 {
		out = append(out, fmt.Sprintf("%d mesh polylines", meshes))
	}
	if colours > 0 {
		out = append(out, fmt.Sprintf("%d entity colours", colours))
	}
	if lineTypes > 0 {
		out = append(out, fmt.Sprintf("%d entity line types", lineTypes))
	}

	names := make([]string, 0, len(d.Layers))
	for name := range d.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		layer := d.Layers[name]
		switch {
		case layer.Off:
			out = append(out, fmt.Sprintf("layer %q is off", name))
		case layer.Color.HasTrue:
			out = append(out, fmt.Sprintf("layer %q true colour", name))
		case layer.Color.Index < 1 || layer.Color.Index > 255:
			out = append(out, fmt.Sprintf("layer %q colour %d", name, layer.Color.Index))
		}
		if layer.LineType != "" && !strings.EqualFold(layer.LineType, "CONTINUOUS") {
			out = append(out, fmt.Sprintf("layer %q line type %s", name, layer.LineType))
		}
	}
	return out
}

// build emits the entities of d into a new yofu/dxf drawing. It returns the
// number of entities written.
func (w *Rewriter) build(d *model.Drawing) (*drawing.Drawing, int, error) {
	out := dxf.NewDrawing()
	layers := map[string]bool{"0": true}

	ensureLayer := func(name string) error {
		if name == "" {
			name = "0"
		}
		if !layers[name] {
			cl := color.ColorNumber(7)
			if layer, ok := d.Layers[name]; ok && layer.Color.Index > 0 && layer.Color.Index < 256 {
				cl = color.ColorNumber(layer.Color.Index)
			}
			if _, err := out.AddLayer(name, cl, table.LT_CONTINUOUS, false); err != nil {
				return fmt.Errorf("layer %q: %w", name, err)
			}
			layers[name] = true
		}
		return out.ChangeLayer(name)
	}

	for name := range d.Layers {
		if err := ensureLayer(name); err != nil {
			return nil, 0, err
		}
	}

	written := 0
	for i, e := range d.Entities {
		if err := ensureLayer(e.Attrs().Layer); err != nil {
			return nil, 0, err
		}
		n, err := w.emit(out, e)
		if err != nil {
			return nil, 0, fmt.Errorf("entity %d (%s): %w", i, e.Kind(), err)
		}
		written += n
	}
	return out, written, nil
}

// emit writes one entity and returns how many records it produced.
// Ellipses have no counterpart in the writer and are flattened to closed
// polylines.
func (w *Rewriter) emit(out *drawing.Drawing, e model.Entity) (int, error) {
	var err error
	switch v := e.(type) {
	case *model.Line:
		_, err = out.Line(v.Start.X, v.Start.Y, 0, v.End.X, v.End.Y, 0)

	case *model.Circle:
		_, err = out.Circle(v.Center.X, v.Center.Y, 0, v.Radius)

	case *model.Arc:
		_, err = out.Arc(v.Center.X, v.Center.Y, 0, v.Radius, v.StartAngle, v.EndAngle)

	case *model.Polyline2D:
		if len(v.Vertices) < 2 {
			return 0, nil
		}
		verts := make([][]float64, len(v.Vertices))
		for i, vx := range v.Vertices {
			verts[i] = []float64{vx.Pos.X, vx.Pos.Y}
		}
		lw, lerr := out.LwPolyline(v.Closed, verts...)
		if lerr != nil {
			return 0, lerr
		}
		for i, vx := range v.Vertices {
			if i < len(lw.Bulges) {
				lw.Bulges[i] = vx.Bulge
			}
		}

	case *model.Polyline3D:
		return polyline3D(out, v.Vertices, v.Closed)

	case *model.GenericPolyline:
		return polyline3D(out, v.Vertices, v.Closed)

	case *model.Spline:
		writeSpline(out, v)

	case *model.Ellipse:
		return lwPolyline(out, flattenEllipse(v), true)

	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// splinePlanar is the SPLINE flag for a planar, non-rational curve.
const splinePlanar = 8

func writeSpline(out *drawing.Drawing, s *model.Spline) {
	sp := entity.NewSpline()
	sp.SetLayer(out.CurrentLayer)
	sp.Flag = splinePlanar
	sp.Degree = s.Degree
	sp.Knots = append([]float64(nil), s.Knots...)
	sp.Controls = make([][]float64, len(s.ControlPoints))
	for i, p := range s.ControlPoints {
		sp.Controls[i] = []float64{p.X, p.Y, p.Z}
	}
	out.AddEntity(sp)
}

func lwPolyline(out *drawing.Drawing, pts []model.Point2D, closed bool) (int, error) {
	if len(pts) < 2 {
		return 0, nil
	}
	verts := make([][]float64, len(pts))
	for i, p := range pts {
		verts[i] = []float64{p.X, p.Y}
	}
	if _, err := out.LwPolyline(closed, verts...); err != nil {
		return 0, err
	}
	return 1, nil
}

func polyline3D(out *drawing.Drawing, pts []model.Point3D, closed bool) (int, error) {
	if len(pts) < 2 {
		return 0, nil
	}
	verts := make([][]float64, len(pts))
	for i, p := range pts {
		verts[i] = []float64{p.X, p.Y, p.Z}
	}
	if _, err := out.Polyline(closed, verts...); err != nil {
		return 0, err
	}
	return 1, nil
}

// flattenEllipse samples the full ellipse in the XY plane. The unit circle
// gives the parameter's cosine and sine; the repeated closing point is
// dropped since the polyline is written closed.
func flattenEllipse(e *model.Ellipse) []model.Point2D {
	minor := geom.MinorAxis(e.MajorAxis, e.Normal, e.MinorLength)
	unit := geom.FlattenArc(model.Point2D{}, 1, 0, 360, 360.0/ellipseSegments)
	pts := make([]model.Point2D, 0, len(unit)-1)
	for _, u := range unit[:len(unit)-1] {
		p := e.Center.Add(e.MajorAxis.Scale(u.X)).Add(minor.Scale(u.Y))
		pts = append(pts, p.XY())
	}
	return pts
}
