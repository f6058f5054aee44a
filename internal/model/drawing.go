package model

import "image/color"

// Layer is an entry of the drawing's LAYER table.
type Layer struct {
	Name     string    `json:"name"`
	Color    ColorSpec `json:"color"`
	LineType string    `json:"line_type,omitempty"`
	Off      bool      `json:"off,omitempty"`
}

// Drawing is a loaded DXF document: its layers and the entities of the
// ENTITIES section in file order.
type Drawing struct {
	Path     string           `json:"path"`
	Version  DXFVersion       `json:"version"`
	ACADVer  string           `json:"acadver"` // raw $ACADVER value as read
	Layers   map[string]Layer `json:"layers"`
	Entities []Entity         `json:"-"`

	// Skipped counts the records the loader read past without modelling,
	// keyed by record name. Entities inside user block definitions are
	// keyed "BLOCK/<kind>".
	Skipped map[string]int `json:"skipped,omitempty"`
}

// NewDrawing returns an empty drawing stamped with version v.
func NewDrawing(v DXFVersion) *Drawing {
	return &Drawing{
		Version: v,
		ACADVer: v.ACADCode(),
		Layers:  map[string]Layer{"0": {Name: "0", Color: ACI(7)}},
	}
}

// Add appends entities to the drawing.
func (d *Drawing) Add(entities ...Entity) {
	d.Entities = append(d.Entities, entities...)
}

// DisplayColor resolves the colour an entity is drawn with. ByLayer entities
// take their layer's colour; a missing layer and ByBlock both fall back to
// black. Pure white is returned as black (see Visible).
func (d *Drawing) DisplayColor(e Entity) color.RGBA {
	return Visible(d.resolveColor(e.Attrs()))
}

func (d *Drawing) resolveColor(p *Props) color.RGBA {
	spec := p.Color
	if spec.ByLayer() {
		layer, ok := d.Layers[p.Layer]
		if !ok {
			return Black
		}
		spec = layer.Color
		if spec.ByLayer() {
			return Black
		}
	}
	if spec.HasTrue {
		return trueColorRGBA(spec.TrueColor)
	}
	if spec.Index == ACIByBlock {
		return Black
	}
	return ACIColor(spec.Index)
}

// Lossless reports whether the loader modelled every record it met.
func (d *Drawing) Lossless() bool {
	return len(d.Skipped) == 0
}

// VisibleEntities returns the entities whose layer is not switched off.
// Entities on layers missing from the table are kept.
func (d *Drawing) VisibleEntities() []Entity {
	out := make([]Entity, 0, len(d.Entities))
	for _, e := range d.Entities {
		if layer, ok := d.Layers[e.Attrs().Layer]; ok && layer.Off {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Counts returns the number of entities of each kind.
func (d *Drawing) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range d.Entities {
		counts[e.Kind()]++
	}
	return counts
}

// Lines returns the LINE entities.
func (d *Drawing) Lines() []*Line { return collect[*Line](d.Entities) }

// Circles returns the CIRCLE entities.
func (d *Drawing) Circles() []*Circle { return collect[*Circle](d.Entities) }

// Arcs returns the ARC entities.
func (d *Drawing) Arcs() []*Arc { return collect[*Arc](d.Entities) }

// Polylines2D returns the planar polylines.
func (d *Drawing) Polylines2D() []*Polyline2D { return collect[*Polyline2D](d.Entities) }

// Polylines3D returns the 3D polylines.
func (d *Drawing) Polylines3D() []*Polyline3D { return collect[*Polyline3D](d.Entities) }

// Splines returns the SPLINE entities.
func (d *Drawing) Splines() []*Spline { return collect[*Spline](d.Entities) }

// Ellipses returns the ELLIPSE entities.
func (d *Drawing) Ellipses() []*Ellipse { return collect[*Ellipse](d.Entities) }

// Generic returns the fallback polyline records.
func (d *Drawing) Generic() []*GenericPolyline { return collect[*GenericPolyline](d.Entities) }

func collect[T Entity](entities []Entity) []T {
	var out []T
	for _, e := range entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
