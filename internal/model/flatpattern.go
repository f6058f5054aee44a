package model

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Extents is the 2D bounding rectangle of a flat pattern in drawing units.
type Extents struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (e Extents) Width() float64  { return e.MaxX - e.MinX }
func (e Extents) Height() float64 { return e.MaxY - e.MinY }

// FlatPattern is the outcome of processing one DXF file in a batch.
type FlatPattern struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Version   DXFVersion   `json:"version"`
	Extents   Extents      `json:"extents"`
	HasBounds bool         `json:"has_bounds"`
	Counts    map[Kind]int `json:"counts"`
	Thumbnail []byte       `json:"-"` // PNG, nil when no thumbnail is available
	Output    string       `json:"output,omitempty"`
	Rewritten bool         `json:"rewritten"`
	Err       error        `json:"-"`
}

// NewFlatPattern creates a FlatPattern for the DXF file at path.
func NewFlatPattern(path string) FlatPattern {
	base := filepath.Base(path)
	return FlatPattern{
		ID:     uuid.New().String()[:8],
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Path:   path,
		Counts: map[Kind]int{},
	}
}

// EntityCount returns the total number of entities.
func (f FlatPattern) EntityCount() int {
	n := 0
	for _, c := range f.Counts {
		n += c
	}
	return n
}

// Status returns "ok" or the error message.
func (f FlatPattern) Status() string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return "ok"
}
