package model

import (
	"math"
	"strconv"
	"strings"
)

// LineType is a named DXF line pattern.
type LineType int

const (
	LineContinuous LineType = iota
	LineDashed
	LineHidden
	LineCenter
	LinePhantom
	LineDashDot
	LineDot
)

var lineTypeNames = map[string]LineType{
	"CONTINUOUS": LineContinuous,
	"BYLAYER":    LineContinuous,
	"BYBLOCK":    LineContinuous,
	"DASHED":     LineDashed,
	"HIDDEN":     LineHidden,
	"CENTER":     LineCenter,
	"PHANTOM":    LinePhantom,
	"DASHDOT":    LineDashDot,
	"DOT":        LineDot,
}

// dashPatterns holds the on/off lengths of each pattern, in multiples of
// the stroke width.
var dashPatterns = map[LineType][]float64{
	LineDashed:  {6, 3},
	LineHidden:  {3, 2},
	LineCenter:  {12, 3, 3, 3},
	LinePhantom: {12, 3, 3, 3, 3, 3},
	LineDashDot: {6, 3, 1, 3},
	LineDot:     {1, 3},
}

// ParseLineType maps a DXF line type name to a LineType. Unknown names are
// drawn solid.
func ParseLineType(name string) LineType {
	if lt, ok := lineTypeNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lt
	}
	return LineContinuous
}

// Dashes returns the dash pattern, or nil for solid lines.
func (lt LineType) Dashes() []float64 {
	return dashPatterns[lt]
}

// DashArray returns the SVG stroke-dasharray value for a stroke of the
// given width, or "" for solid lines. Lengths are rounded to 0.001.
func (lt LineType) DashArray(width float64) string {
	dashes := dashPatterns[lt]
	parts := make([]string, len(dashes))
	for i, d := range dashes {
		parts[i] = strconv.FormatFloat(math.Round(d*width*1000)/1000, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// EffectiveLineType resolves an entity's line type, deferring to its layer
// when the entity has none or says BYLAYER.
func (d *Drawing) EffectiveLineType(e Entity) LineType {
	name := e.Attrs().LineType
	if name == "" || strings.EqualFold(name, "BYLAYER") {
		if layer, ok := d.Layers[e.Attrs().Layer]; ok {
			name = layer.LineType
		}
	}
	return ParseLineType(name)
}
