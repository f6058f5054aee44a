package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/piwi3910/SheetThumb/internal/model"
	"go.uber.org/zap"
)

// SVG writes d as an SVG document with the same layout as Raster.
func (r *Renderer) SVG(d *model.Drawing, w io.Writer) error {
	var b strings.Builder
	s := &svgSurface{b: &b, strokeWidth: r.opts.StrokeWidth}

	r.writeHeader(&b)
	shown := d.VisibleEntities()
	tr, ok, err := r.layout(shown)
	if err != nil {
		return err
	}
	if ok {
		for i, e := range shown {
			if err := r.drawEntity(d, e, tr, s); err != nil {
				return fmt.Errorf("entity %d (%s): %w", i, e.Kind(), err)
			}
		}
	}
	r.writeFooter(&b)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	r.logger.Debug("wrote svg", zap.String("file", d.Path), zap.Int("entities", len(shown)))
	return nil
}

func (r *Renderer) writeHeader(b *strings.Builder) {
	o := r.opts
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		o.Width, o.Height, o.Width, o.Height)
	fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hexColor(o.Background))
	fmt.Fprintf(b, `<g fill="none" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round">`+"\n",
		num(o.StrokeWidth))
}

func (r *Renderer) writeFooter(b *strings.Builder) {
	b.WriteString("</g>\n</svg>\n")
}

// svgSurface emits one element per draw call.
type svgSurface struct {
	b           *strings.Builder
	strokeWidth float64
}

func (s *svgSurface) attrs(st style) string {
	a := fmt.Sprintf(`stroke="%s"`, hexColor(st.color))
	if dashes := st.lineType.DashArray(math.Max(s.strokeWidth, 1)); dashes != "" {
		a += fmt.Sprintf(` stroke-dasharray="%s"`, dashes)
	}
	return a
}

func (s *svgSurface) circle(center model.Point2D, r float64, st style) {
	fmt.Fprintf(s.b, `<circle cx="%s" cy="%s" r="%s" %s/>`+"\n",
		num(center.X), num(center.Y), num(r), s.attrs(st))
}

func (s *svgSurface) ellipse(center model.Point2D, rx, ry, rot float64, st style) {
	fmt.Fprintf(s.b, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s" transform="rotate(%s %s %s)" %s/>`+"\n",
		num(center.X), num(center.Y), num(rx), num(ry),
		num(rot), num(center.X), num(center.Y), s.attrs(st))
}

func (s *svgSurface) stroke(p *path, st style) {
	if p.empty() {
		return
	}
	if p.isLine() {
		a, b := p.segs[0].pts[0], p.segs[1].pts[0]
		fmt.Fprintf(s.b, `<line x1="%s" y1="%s" x2="%s" y2="%s" %s/>`+"\n",
			num(a.X), num(a.Y), num(b.X), num(b.Y), s.attrs(st))
		return
	}
	fmt.Fprintf(s.b, `<path d="%s" %s/>`+"\n", pathData(p), s.attrs(st))
}

// pathData converts a path to SVG path syntax. Arcs are split into pieces
// of at most 90° so that full circles can be expressed.
func pathData(p *path) string {
	var parts []string
	for _, seg := range p.segs {
		switch seg.kind {
		case segMove:
			parts = append(parts, "M"+pt(seg.pts[0]))
		case segLine:
			parts = append(parts, "L"+pt(seg.pts[0]))
		case segCubic:
			parts = append(parts, "C"+pt(seg.pts[0])+" "+pt(seg.pts[1])+" "+pt(seg.pts[2]))
		case segArc:
			n := int(math.Ceil(math.Abs(seg.sweep) / 90))
			step := seg.sweep / float64(n)
			// A counter-clockwise model sweep is counter-clockwise on the
			// page, which is SVG's negative sweep direction.
			flag := 0
			if seg.sweep < 0 {
				flag = 1
			}
			for i := 1; i <= n; i++ {
				end := devicePolar(seg.center, seg.radius, seg.start+step*float64(i))
				parts = append(parts, fmt.Sprintf("A%s %s 0 0 %d %s", num(seg.radius), num(seg.radius), flag, pt(end)))
			}
		case segClose:
			parts = append(parts, "Z")
		}
	}
	return strings.Join(parts, " ")
}

func pt(p model.Point2D) string { return num(p.X) + "," + num(p.Y) }

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
