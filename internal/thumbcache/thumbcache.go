// Package thumbcache stores rendered thumbnails on disk keyed by the content
// of the source file and the options used to render it.
package thumbcache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/piwi3910/SheetThumb/internal/render"
)

// Cache is a directory of PNG thumbnails laid out as <dir>/<hh>/<key>.png,
// where hh is the first byte of the key in hex.
type Cache struct {
	dir string
}

// Open returns a cache rooted at dir, creating it if needed.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("thumbcache: empty directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("thumbcache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Key hashes the source bytes together with every option that changes the
// rendered image.
func Key(src []byte, opts render.Options) string {
	d := xxhash.New()
	d.Write(src)
	fmt.Fprintf(d, "|%dx%d|%s|%d|%s|%02x%02x%02x%02x",
		opts.Width, opts.Height,
		strconv.FormatFloat(opts.Margin, 'g', -1, 64),
		opts.SplineSubdivisions,
		strconv.FormatFloat(opts.StrokeWidth, 'g', -1, 64),
		opts.Background.R, opts.Background.G, opts.Background.B, opts.Background.A)
	return fmt.Sprintf("%016x", d.Sum64())
}

// KeyFile is Key over the content of the file at path.
func KeyFile(path string, opts render.Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	src, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return Key(src, opts), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key[:2], key+".png")
}

// Get returns the cached PNG for key. ok is false on a miss.
func (c *Cache) Get(key string) (png []byte, ok bool) {
	if len(key) < 2 {
		return nil, false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores png under key. The entry is written to a temporary file first
// so readers never see a partial image.
func (c *Cache) Put(key string, png []byte) error {
	if len(key) < 2 {
		return fmt.Errorf("thumbcache: invalid key %q", key)
	}
	dest := c.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("thumbcache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("thumbcache: %w", err)
	}
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("thumbcache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("thumbcache: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("thumbcache: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("thumbcache: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("thumbcache: %w", err)
		}
	}
	return nil
}
