// Package importer loads ASCII DXF files into a model.Drawing.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/piwi3910/SheetThumb/internal/model"
)

// ErrFileFormat reports a file that is not a readable DXF document.
var ErrFileFormat = errors.New("invalid DXF file")

// FileFormatError wraps the cause of a failed load.
type FileFormatError struct {
	Path string
	Err  error
}

func (e *FileFormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrFileFormat, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrFileFormat, e.Err)
}

func (e *FileFormatError) Unwrap() error { return e.Err }

func (e *FileFormatError) Is(target error) bool { return target == ErrFileFormat }

// LoadDXF opens and parses the DXF file at path.
func LoadDXF(path string) (*model.Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileFormatError{Path: path, Err: err}
	}
	defer f.Close()

	d, err := ReadDXF(f)
	if err != nil {
		var ffe *FileFormatError
		if errors.As(err, &ffe) {
			ffe.Path = path
		}
		return nil, err
	}
	d.Path = path
	return d, nil
}

// ReadDXF parses a DXF document from r. Entity types the model has no
// variant for are skipped and counted in Drawing.Skipped.
func ReadDXF(r io.Reader) (*model.Drawing, error) {
	tags, err := readTags(r)
	if err != nil {
		return nil, &FileFormatError{Err: err}
	}

	p := &parser{tags: tags, d: &model.Drawing{Layers: map[string]model.Layer{}}}
	if err := p.parse(); err != nil {
		return nil, &FileFormatError{Err: err}
	}
	if _, ok := p.d.Layers["0"]; !ok {
		p.d.Layers["0"] = model.Layer{Name: "0", Color: model.ACI(7)}
	}
	return p.d, nil
}

type parser struct {
	tags []tag
	pos  int
	d    *model.Drawing
}

func (p *parser) done() bool { return p.pos >= len(p.tags) }

func (p *parser) peek() tag { return p.tags[p.pos] }

// record collects the tags following a code-0 tag up to the next one.
func (p *parser) record() []tag {
	start := p.pos
	for p.pos < len(p.tags) && p.tags[p.pos].code != 0 {
		p.pos++
	}
	return p.tags[start:p.pos]
}

func (p *parser) parse() error {
	sections := 0
	for !p.done() {
		t := p.peek()
		p.pos++
		if t.is(0, "EOF") {
			break
		}
		if !t.is(0, "SECTION") {
			continue
		}
		if p.done() || p.peek().code != 2 {
			return fmt.Errorf("line %d: SECTION without a name", t.line)
		}
		name := p.peek().str()
		p.pos++
		sections++

		var err error
		switch name {
		case "HEADER":
			err = p.header()
		case "TABLES":
			err = p.tables()
		case "ENTITIES":
			err = p.entities()
		case "BLOCKS":
			p.blocks()
		default:
			p.skipSection()
		}
		if err != nil {
			return fmt.Errorf("%s section: %w", name, err)
		}
	}
	if sections == 0 {
		return errors.New("no SECTION found")
	}
	return nil
}

func (p *parser) skipSection() {
	for !p.done() {
		t := p.peek()
		p.pos++
		if t.is(0, "ENDSEC") {
			return
		}
	}
}

func hasCode(tags []tag, code int) bool {
	for _, t := range tags {
		if t.code == code {
			return true
		}
	}
	return false
}

func (p *parser) skip(kind string) {
	if p.d.Skipped == nil {
		p.d.Skipped = make(map[string]int)
	}
	p.d.Skipped[kind]++
}

// blocks counts user block definitions and the entities inside them. The
// anonymous *Model_Space and *Paper_Space blocks every writer emits are
// ignored unless they hold entities.
func (p *parser) blocks() {
	inBlock := false
	for !p.done() {
		t := p.peek()
		p.pos++
		if t.code != 0 {
			continue
		}
		switch kind := t.str(); kind {
		case "ENDSEC":
			return
		case "BLOCK":
			inBlock = true
			for _, bt := range p.record() {
				if bt.code == 2 && !strings.HasPrefix(bt.str(), "*") {
					p.skip("BLOCK")
				}
			}
		case "ENDBLK":
			inBlock = false
			p.record()
		default:
			if inBlock {
				p.skip("BLOCK/" + kind)
			}
			p.record()
		}
	}
}

func (p *parser) header() error {
	for !p.done() {
		t := p.peek()
		p.pos++
		switch {
		case t.is(0, "ENDSEC"):
			return nil
		case t.is(9, "$ACADVER"):
			if p.done() || p.peek().code != 1 {
				return fmt.Errorf("line %d: $ACADVER without a value", t.line)
			}
			p.d.ACADVer = p.peek().str()
			p.d.Version = model.VersionFromACAD(p.d.ACADVer)
			p.pos++
		}
	}
	return nil
}

func (p *parser) tables() error {
	for !p.done() {
		t := p.peek()
		p.pos++
		switch {
		case t.is(0, "ENDSEC"):
			return nil
		case t.is(0, "LAYER"):
			layer, err := parseLayer(p.record())
			if err != nil {
				return err
			}
			if layer.Name != "" {
				p.d.Layers[layer.Name] = layer
			}
		}
	}
	return nil
}

func parseLayer(tags []tag) (model.Layer, error) {
	layer := model.Layer{Color: model.ACI(7)}
	for _, t := range tags {
		switch t.code {
		case 2:
			layer.Name = t.str()
		case 6:
			layer.LineType = t.str()
		case 62:
			i, err := t.int()
			if err != nil {
				return layer, err
			}
			// A negative colour number marks the layer as off.
			if i < 0 {
				layer.Off = true
				i = -i
			}
			layer.Color.Index = i
		case 420:
			v, err := t.int()
			if err != nil {
				return layer, err
			}
			layer.Color.TrueColor = uint32(v) & 0xFFFFFF
			layer.Color.HasTrue = true
		}
	}
	return layer, nil
}

func (p *parser) entities() error {
	for !p.done() {
		t := p.peek()
		p.pos++
		if t.code != 0 {
			continue
		}
		kind := t.str()
		if kind == "ENDSEC" {
			return nil
		}

		body := p.record()
		var (
			e   model.Entity
			err error
		)
		switch kind {
		case "LINE":
			e, err = parseLine(body)
		case "CIRCLE":
			e, err = parseCircle(body)
		case "ARC":
			e, err = parseArc(body)
		case "LWPOLYLINE":
			e, err = parseLwPolyline(body)
		case "POLYLINE":
			e, err = p.polyline(body)
		case "SPLINE":
			e, err = parseSpline(body)
			if hasCode(body, 41) {
				p.skip("SPLINE weights")
			}
		case "ELLIPSE":
			e, err = parseEllipse(body)
		default:
			p.skip(kind)
			continue
		}
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", t.line, kind, err)
		}
		p.d.Add(e)
	}
	return nil
}
