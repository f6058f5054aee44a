// Package batch renders a folder of DXF flat patterns in parallel and
// optionally rewrites each file at an older format version.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/piwi3910/SheetThumb/internal/bounds"
	"github.com/piwi3910/SheetThumb/internal/downgrade"
	"github.com/piwi3910/SheetThumb/internal/importer"
	"github.com/piwi3910/SheetThumb/internal/logging"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/render"
	"github.com/piwi3910/SheetThumb/internal/thumbcache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls a batch run.
type Config struct {
	OutputDir     string // "" writes no thumbnail files
	Format        string // model.FormatPNG or model.FormatSVG
	Workers       int    // 0 = one per CPU
	Optimize      bool   // rewrite each file at TargetVersion
	TargetVersion string
	Render        render.Options
}

// ConfigFromApp derives a batch configuration from the application
// settings.
func ConfigFromApp(cfg model.AppConfig, outputDir string) Config {
	return Config{
		OutputDir:     outputDir,
		Format:        cfg.OutputFormat,
		Workers:       cfg.Workers,
		Optimize:      cfg.Optimize,
		TargetVersion: cfg.TargetVersion,
		Render:        render.OptionsFromConfig(cfg),
	}
}

// Report summarises a run. Patterns are in input order.
type Report struct {
	Patterns  []model.FlatPattern
	Failed    int
	Rewritten int
	Skipped   int // rewrites skipped: unsupported target or lossy source
	CacheHits int
	Elapsed   time.Duration
}

// OK returns the number of files rendered without error.
func (r Report) OK() int { return len(r.Patterns) - r.Failed }

// Processor runs batches. Cache is optional.
type Processor struct {
	Config Config
	Logger *zap.Logger
	Cache  *thumbcache.Cache
}

type outcome struct {
	cacheHit bool
	skipped  bool
}

// Run processes every path. A failing file is recorded in its FlatPattern
// and never stops the others. Cancelling ctx marks the files not yet
// started as failed with the context error.
func (p *Processor) Run(ctx context.Context, paths []string) Report {
	start := time.Now()
	log := logging.OrNop(p.Logger)
	renderer := render.New(p.Config.Render, log)
	rewriter := downgrade.New(log)

	workers := p.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	patterns := make([]model.FlatPattern, len(paths))
	outcomes := make([]outcome, len(paths))

	g := errgroup.Group{}
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fp := model.NewFlatPattern(path)
				fp.Err = err
				patterns[i] = fp
				return nil
			}
			patterns[i], outcomes[i] = p.process(path, renderer, rewriter, log)
			return nil
		})
	}
	g.Wait()

	rep := Report{Patterns: patterns}
	for i, fp := range patterns {
		if fp.Err != nil {
			rep.Failed++
		}
		if fp.Rewritten {
			rep.Rewritten++
		}
		if outcomes[i].skipped {
			rep.Skipped++
		}
		if outcomes[i].cacheHit {
			rep.CacheHits++
		}
	}
	rep.Elapsed = time.Since(start)

	log.Info("batch finished",
		zap.Int("files", len(paths)),
		zap.Int("failed", rep.Failed),
		zap.Int("rewritten", rep.Rewritten),
		zap.Duration("elapsed", rep.Elapsed))
	return rep
}

func (p *Processor) process(path string, r *render.Renderer, w *downgrade.Rewriter, log *zap.Logger) (model.FlatPattern, outcome) {
	fp := model.NewFlatPattern(path)
	var out outcome

	d, png, hit, err := p.thumbnail(path, r)
	out.cacheHit = hit
	if d != nil {
		describe(&fp, d, r.Options().SplineSubdivisions)
	}
	if err != nil {
		fp.Err = err
		return fp, out
	}
	fp.Thumbnail = png

	if p.Config.OutputDir != "" {
		dest, err := p.writeOutput(fp.Name, d, png, r)
		if err != nil {
			log.Warn("cannot write thumbnail", zap.String("file", path), zap.Error(err))
			fp.Err = err
			return fp, out
		}
		fp.Output = dest
	}

	if p.Config.Optimize {
		err := w.Rewrite(path, p.Config.TargetVersion)
		switch {
		case err == nil:
			fp.Rewritten = true
			if v, ok := model.ParseVersionTag(p.Config.TargetVersion); ok {
				fp.Version = v
			}
		case errors.Is(err, downgrade.ErrUnsupportedVersion), errors.Is(err, downgrade.ErrLossy):
			out.skipped = true
		default:
			fp.Err = err
		}
	}
	return fp, out
}

// thumbnail returns the loaded drawing and its PNG, from the cache when
// possible.
func (p *Processor) thumbnail(path string, r *render.Renderer) (*model.Drawing, []byte, bool, error) {
	var key string
	if p.Cache != nil {
		if k, err := thumbcache.KeyFile(path, r.Options()); err == nil {
			key = k
			if png, ok := p.Cache.Get(key); ok {
				d, err := importer.LoadDXF(path)
				if err != nil {
					return nil, nil, false, err
				}
				return d, png, true, nil
			}
		}
	}

	res := r.Thumbnail(path)
	if res.Err != nil {
		return res.Drawing, nil, false, res.Err
	}
	png, err := render.PNGBytes(res.Image)
	if err != nil {
		return res.Drawing, nil, false, err
	}
	if key != "" {
		if err := p.Cache.Put(key, png); err != nil {
			logging.OrNop(p.Logger).Debug("cache write failed", zap.String("file", path), zap.Error(err))
		}
	}
	return res.Drawing, png, false, nil
}

func (p *Processor) writeOutput(name string, d *model.Drawing, png []byte, r *render.Renderer) (string, error) {
	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if p.Config.Format == model.FormatSVG {
		dest := filepath.Join(p.Config.OutputDir, name+".svg")
		f, err := os.Create(dest)
		if err != nil {
			return "", fmt.Errorf("create svg: %w", err)
		}
		if err := r.SVG(d, f); err != nil {
			f.Close()
			os.Remove(dest)
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close svg: %w", err)
		}
		return dest, nil
	}
	dest := filepath.Join(p.Config.OutputDir, name+".png")
	if err := os.WriteFile(dest, png, 0644); err != nil {
		return "", fmt.Errorf("write png: %w", err)
	}
	return dest, nil
}

// describe fills the metadata of fp from d.
func describe(fp *model.FlatPattern, d *model.Drawing, subdivisions int) {
	fp.Version = d.Version
	for k, n := range d.Counts() {
		fp.Counts[k] = n
	}
	b, err := bounds.OfDrawing(d, bounds.Options{SplineSubdivisions: subdivisions})
	if err != nil || b.IsEmpty() {
		return
	}
	fp.Extents = b.Extents()
	fp.HasBounds = true
}

// Discover lists the DXF files directly inside dir, matching the extension
// case-insensitively, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".dxf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
