// SheetThumb renders thumbnails of DXF flat patterns and rewrites DXF files
// at older format versions for CAM software that cannot read newer ones.
//
// Build:
//   go build -o sheetthumb ./cmd/sheetthumb

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/docopt/docopt-go"
	"go.uber.org/zap"

	"github.com/piwi3910/SheetThumb/internal/batch"
	"github.com/piwi3910/SheetThumb/internal/bounds"
	"github.com/piwi3910/SheetThumb/internal/downgrade"
	"github.com/piwi3910/SheetThumb/internal/export"
	"github.com/piwi3910/SheetThumb/internal/importer"
	"github.com/piwi3910/SheetThumb/internal/logging"
	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/piwi3910/SheetThumb/internal/project"
	"github.com/piwi3910/SheetThumb/internal/thumbcache"
)

const version = "0.1.0"

const usage = `SheetThumb - DXF flat pattern thumbnails.

Usage:
  sheetthumb render <dir> [--out=<dir>] [--size=<px>] [--svg] [--workers=<n>] [--optimize=<tag>] [--catalog=<pdf>] [--labels=<pdf>] [--report=<xlsx>] [--cache] [--config=<file>] [--debug]
  sheetthumb bounds <file> [--debug]
  sheetthumb downgrade <file> <tag> [--debug]
  sheetthumb -h | --help
  sheetthumb --version

Options:
  -h --help          Show this screen.
  --version          Show version.
  --out=<dir>        Directory for thumbnail files.
  --size=<px>        Thumbnail width and height in pixels.
  --svg              Write SVG instead of PNG.
  --workers=<n>      Files rendered in parallel (0 = one per CPU).
  --optimize=<tag>   Rewrite each file at this DXF version (2000, 2004, 2007, 2010, 2013, 2018).
  --catalog=<pdf>    Write a PDF catalog of all thumbnails.
  --labels=<pdf>     Write a PDF sheet of QR-coded labels.
  --report=<xlsx>    Write an Excel report.
  --cache            Reuse thumbnails from ~/.sheetthumb/cache when the settings name no cache.
  --config=<file>    Settings file [default: ~/.sheetthumb/config.json].
  --debug            Verbose console logging.
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout io.Writer) int {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	args, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return exitUsage
	}
	if len(args) == 0 || flag(args, "--help") || flag(args, "--version") {
		return exitOK
	}

	logger, err := logging.New(flag(args, "--debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	switch {
	case flag(args, "render"):
		return runRender(ctx, args, stdout, logger)
	case flag(args, "bounds"):
		return runBounds(args, stdout)
	case flag(args, "downgrade"):
		return runDowngrade(args, stdout, logger)
	}
	return exitUsage
}

func runRender(ctx context.Context, args docopt.Opts, stdout io.Writer, logger *zap.Logger) int {
	configPath := str(args, "--config")
	if configPath == "" || configPath == "~/.sheetthumb/config.json" {
		configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		logger.Error("cannot load settings", zap.String("file", configPath), zap.Error(err))
		return exitFailure
	}
	saved := cfg
	if err := applyFlags(&cfg, args); err != nil {
		fmt.Fprintln(stdout, err)
		return exitUsage
	}

	dir := str(args, "<dir>")
	paths, err := batch.Discover(dir)
	if err != nil {
		logger.Error("cannot list drawings", zap.String("dir", dir), zap.Error(err))
		return exitFailure
	}

	p := &batch.Processor{Config: batch.ConfigFromApp(cfg, str(args, "--out")), Logger: logger}
	if cfg.CacheDir != "" {
		cache, err := thumbcache.Open(cfg.CacheDir)
		if err != nil {
			logger.Warn("thumbnail cache disabled", zap.Error(err))
		} else {
			p.Cache = cache
		}
	}

	rep := p.Run(ctx, paths)
	printReport(stdout, rep)

	if err := writeExports(args, rep.Patterns); err != nil {
		logger.Error("export failed", zap.Error(err))
		return exitFailure
	}

	// Flag overrides apply to this run only.
	saved.AddRecentFolder(dir)
	if err := project.SaveAppConfig(configPath, saved); err != nil {
		logger.Warn("cannot save settings", zap.String("file", configPath), zap.Error(err))
	}

	if rep.Failed > 0 {
		return exitFailure
	}
	return exitOK
}

// applyFlags overrides settings with command line options.
func applyFlags(cfg *model.AppConfig, args docopt.Opts) error {
	if s := str(args, "--size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid --size %q", s)
		}
		cfg.ThumbnailWidth, cfg.ThumbnailHeight = n, n
	}
	if s := str(args, "--workers"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid --workers %q", s)
		}
		cfg.Workers = n
	}
	if flag(args, "--svg") {
		cfg.OutputFormat = model.FormatSVG
	}
	if tag := str(args, "--optimize"); tag != "" {
		cfg.Optimize = true
		cfg.TargetVersion = tag
	}
	if flag(args, "--cache") && cfg.CacheDir == "" {
		cfg.CacheDir = project.DefaultCacheDir()
	}
	return nil
}

func writeExports(args docopt.Opts, patterns []model.FlatPattern) error {
	if path := str(args, "--catalog"); path != "" {
		if err := export.ExportCatalogPDF(path, patterns); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	if path := str(args, "--labels"); path != "" {
		if err := export.ExportLabels(path, patterns); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
	}
	if path := str(args, "--report"); path != "" {
		if err := export.ExportReport(path, patterns); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	return nil
}

func printReport(w io.Writer, rep batch.Report) {
	for _, fp := range rep.Patterns {
		switch {
		case fp.Err != nil:
			fmt.Fprintf(w, "FAIL  %s: %v\n", fp.Path, fp.Err)
		case fp.Output != "":
			fmt.Fprintf(w, "ok    %s -> %s\n", fp.Path, fp.Output)
		default:
			fmt.Fprintf(w, "ok    %s\n", fp.Path)
		}
	}
	fmt.Fprintf(w, "%d files, %d rendered, %d failed, %d rewritten, %d cached (%s)\n",
		len(rep.Patterns), rep.OK(), rep.Failed, rep.Rewritten, rep.CacheHits, rep.Elapsed.Round(1e6))
}

func runBounds(args docopt.Opts, stdout io.Writer) int {
	path := str(args, "<file>")
	d, err := importer.LoadDXF(path)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return exitFailure
	}
	b, err := bounds.OfDrawing(d, bounds.Options{})
	if err != nil {
		fmt.Fprintln(stdout, err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "file:     %s\n", path)
	fmt.Fprintf(stdout, "version:  %s (%s)\n", d.Version, d.ACADVer)
	if b.IsEmpty() {
		fmt.Fprintln(stdout, "bounds:   empty")
	} else {
		fmt.Fprintf(stdout, "bounds:   (%g, %g) - (%g, %g)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
		fmt.Fprintf(stdout, "size:     %g x %g\n", b.MaxX-b.MinX, b.MaxY-b.MinY)
	}

	counts := d.Counts()
	kinds := make([]model.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(stdout, "%-10s%d\n", k.String()+":", counts[k])
	}
	return exitOK
}

func runDowngrade(args docopt.Opts, stdout io.Writer, logger *zap.Logger) int {
	path, tag := str(args, "<file>"), str(args, "<tag>")
	err := downgrade.New(logger).Rewrite(path, tag)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "rewrote %s as DXF %s\n", path, tag)
		return exitOK
	case errors.Is(err, downgrade.ErrUnsupportedVersion):
		fmt.Fprintf(stdout, "skipped %s: %v\n", path, err)
		return exitUsage
	case errors.Is(err, downgrade.ErrLossy):
		fmt.Fprintf(stdout, "skipped %s: %v\n", path, err)
		return exitFailure
	default:
		fmt.Fprintln(stdout, err)
		return exitFailure
	}
}

func flag(args docopt.Opts, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func str(args docopt.Opts, key string) string {
	s, _ := args[key].(string)
	return s
}
