package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/SheetThumb/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := model.DefaultAppConfig()
	cfg.ThumbnailWidth = 256
	cfg.OutputFormat = model.FormatSVG
	cfg.Optimize = true
	cfg.TargetVersion = "2013"
	cfg.RecentFolders = []string{"/tmp/parts", "/tmp/more"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.ThumbnailWidth != 256 {
		t.Errorf("expected ThumbnailWidth=256, got %d", loaded.ThumbnailWidth)
	}
	if loaded.OutputFormat != model.FormatSVG {
		t.Errorf("expected OutputFormat=svg, got %s", loaded.OutputFormat)
	}
	if !loaded.Optimize || loaded.TargetVersion != "2013" {
		t.Errorf("expected optimize to 2013, got %v %s", loaded.Optimize, loaded.TargetVersion)
	}
	if len(loaded.RecentFolders) != 2 {
		t.Errorf("expected 2 recent folders, got %d", len(loaded.RecentFolders))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.ThumbnailWidth != defaults.ThumbnailWidth {
		t.Errorf("expected default width %d, got %d", defaults.ThumbnailWidth, cfg.ThumbnailWidth)
	}
	if cfg.TargetVersion != "2000" {
		t.Errorf("expected target version 2000, got %s", cfg.TargetVersion)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected an error for invalid JSON")
	} else if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestLoadAppConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"thumbnail_width": 64, "margin": 5, "output_format": "gif"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.ThumbnailWidth != 64 {
		t.Errorf("expected width 64, got %d", cfg.ThumbnailWidth)
	}
	if cfg.ThumbnailHeight != 100 {
		t.Errorf("missing height should keep its default, got %d", cfg.ThumbnailHeight)
	}
	if cfg.Margin != 0.9 {
		t.Errorf("out-of-range margin should be reset, got %f", cfg.Margin)
	}
	if cfg.OutputFormat != model.FormatPNG {
		t.Errorf("unknown format should be reset, got %s", cfg.OutputFormat)
	}
	if cfg.RecentFolders == nil {
		t.Error("RecentFolders should not be nil")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("unexpected config file name %s", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".sheetthumb" {
		t.Errorf("unexpected config directory %s", path)
	}
	if filepath.Dir(DefaultCacheDir()) != DefaultConfigDir() {
		t.Errorf("cache dir %s should live in the config dir", DefaultCacheDir())
	}
}
