package model

import (
	"fmt"
	"image/color"
	"math"
)

// Special AutoCAD Color Index values.
const (
	ACIByBlock = 0
	ACIByLayer = 256
)

// ColorSpec is the colour an entity or layer declares. Index uses DXF
// numbering, so the zero value is ByBlock; the loader stores ACIByLayer for
// entities without an explicit colour.
type ColorSpec struct {
	Index     int    `json:"aci"`        // 1..255, ACIByBlock or ACIByLayer
	TrueColor uint32 `json:"true_color"` // 0xRRGGBB, used when HasTrue is set
	HasTrue   bool   `json:"has_true,omitempty"`
}

// ByLayerColor is the colour of entities that defer to their layer.
var ByLayerColor = ColorSpec{Index: ACIByLayer}

// ByLayer reports whether the colour defers to the entity's layer.
func (c ColorSpec) ByLayer() bool {
	return !c.HasTrue && c.Index == ACIByLayer
}

// ACI returns a ColorSpec for an explicit colour index.
func ACI(index int) ColorSpec { return ColorSpec{Index: index} }

// TrueRGB returns a ColorSpec for a 24-bit colour.
func TrueRGB(r, g, b uint8) ColorSpec {
	return ColorSpec{Index: ACIByLayer, TrueColor: uint32(r)<<16 | uint32(g)<<8 | uint32(b), HasTrue: true}
}

func (c ColorSpec) String() string {
	switch {
	case c.HasTrue:
		return fmt.Sprintf("#%06X", c.TrueColor&0xFFFFFF)
	case c.Index == ACIByLayer:
		return "ByLayer"
	case c.Index == ACIByBlock:
		return "ByBlock"
	default:
		return fmt.Sprintf("ACI %d", c.Index)
	}
}

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// aciPalette holds the RGB values of AutoCAD colour indices 0..255.
var aciPalette = buildACIPalette()

func buildACIPalette() [256]color.RGBA {
	var p [256]color.RGBA
	fixed := []color.RGBA{
		{0, 0, 0, 255},
		{255, 0, 0, 255},
		{255, 255, 0, 255},
		{0, 255, 0, 255},
		{0, 255, 255, 255},
		{0, 0, 255, 255},
		{255, 0, 255, 255},
		{255, 255, 255, 255},
		{128, 128, 128, 255},
		{192, 192, 192, 255},
	}
	copy(p[:], fixed)

	// 10..249: 24 hues in 15° steps, each with five values at full and
	// half saturation.
	values := []float64{255, 204, 153, 127, 76}
	for i := 10; i < 250; i++ {
		hue := float64(i/10-1) * 15
		v := values[(i%10)/2]
		sat := 1.0
		if i%2 == 1 {
			sat = 0.5
		}
		p[i] = hsvToRGB(hue, sat, v)
	}

	greys := []uint8{51, 91, 132, 173, 214, 255}
	for i, g := range greys {
		p[250+i] = color.RGBA{g, g, g, 255}
	}
	return p
}

func hsvToRGB(hue, sat, v float64) color.RGBA {
	lo := v * (1 - sat)
	h := math.Mod(hue, 360) / 60
	sector := int(h)
	f := h - float64(sector)
	rise := lo + (v-lo)*f
	fall := v - (v-lo)*f

	var r, g, b float64
	switch sector {
	case 0:
		r, g, b = v, rise, lo
	case 1:
		r, g, b = fall, v, lo
	case 2:
		r, g, b = lo, v, rise
	case 3:
		r, g, b = lo, fall, v
	case 4:
		r, g, b = rise, lo, v
	default:
		r, g, b = v, lo, fall
	}
	return color.RGBA{R: uint8(math.Floor(r)), G: uint8(math.Floor(g)), B: uint8(math.Floor(b)), A: 255}
}

// ACIColor returns the RGB value of an AutoCAD colour index. Indices outside
// 1..255 return black.
func ACIColor(index int) color.RGBA {
	if index < 1 || index > 255 {
		return Black
	}
	return aciPalette[index]
}

func trueColorRGBA(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Visible coerces pure white to black so geometry stays visible on the
// white thumbnail background. Every other colour is returned unchanged.
func Visible(c color.RGBA) color.RGBA {
	if c.R == 255 && c.G == 255 && c.B == 255 {
		return Black
	}
	return c
}
