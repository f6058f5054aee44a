package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/piwi3910/SheetThumb/internal/importer"
	"github.com/piwi3910/SheetThumb/internal/model"
	"go.uber.org/zap"
)

// ErrRender reports a drawing that could be loaded but not drawn.
var ErrRender = errors.New("render failed")

// RenderError wraps a failure while computing bounds or drawing.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrRender, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// Result is the outcome of rendering one file. Image is nil when no
// thumbnail is available, in which case Err says why.
type Result struct {
	Path    string
	Drawing *model.Drawing
	Image   *image.RGBA
	Err     error
}

// Thumbnail loads and rasterises the file at path. Failures, including
// panics while drawing, are logged and returned in the result; it never
// panics itself.
func (r *Renderer) Thumbnail(path string) Result {
	res := Result{Path: path}

	d, err := importer.LoadDXF(path)
	if err != nil {
		r.logger.Warn("cannot load drawing", zap.String("file", path), zap.Error(err))
		res.Err = err
		return res
	}
	res.Drawing = d
	res.Image, res.Err = r.RenderDrawing(d)
	return res
}

// RenderDrawing rasterises an already loaded drawing behind the same
// catch boundary as Thumbnail.
func (r *Renderer) RenderDrawing(d *model.Drawing) (*image.RGBA, error) {
	img, err := r.safeRaster(d)
	if err != nil {
		r.logger.Warn("no thumbnail", zap.String("file", d.Path), zap.Error(err))
		return nil, &RenderError{Path: d.Path, Err: err}
	}
	return img, nil
}

func (r *Renderer) safeRaster(d *model.Drawing) (img *image.RGBA, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	img, err = r.Raster(d)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(img image.Image, w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGBytes encodes img as PNG in memory.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(img, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
