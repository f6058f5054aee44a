package model

// Output formats for generated thumbnails.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Thumbnail rendering
	ThumbnailWidth     int     `json:"thumbnail_width"`     // px
	ThumbnailHeight    int     `json:"thumbnail_height"`    // px
	Margin             float64 `json:"margin"`              // fraction of the canvas the content may fill
	SplineSubdivisions int     `json:"spline_subdivisions"` // samples per spline
	OutputFormat       string  `json:"output_format"`       // "png" or "svg"

	// DXF rewrite
	Optimize      bool   `json:"optimize"`       // rewrite files after rendering
	TargetVersion string `json:"target_version"` // "2000", "2004", ... "2018"

	// Batch processing
	Workers  int    `json:"workers"`   // 0 = one per CPU
	CacheDir string `json:"cache_dir"` // "" disables the thumbnail cache

	RecentFolders []string `json:"recent_folders"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ThumbnailWidth:     100,
		ThumbnailHeight:    100,
		Margin:             0.9,
		SplineSubdivisions: 50,
		OutputFormat:       FormatPNG,
		Optimize:           false,
		TargetVersion:      "2000",
		Workers:            0,
		CacheDir:           "",
		RecentFolders:      []string{},
	}
}

// Validate replaces out-of-range values with their defaults and returns the
// names of the fields it reset.
func (c *AppConfig) Validate() []string {
	defaults := DefaultAppConfig()
	var reset []string

	if c.ThumbnailWidth <= 0 {
		c.ThumbnailWidth = defaults.ThumbnailWidth
		reset = append(reset, "thumbnail_width")
	}
	if c.ThumbnailHeight <= 0 {
		c.ThumbnailHeight = defaults.ThumbnailHeight
		reset = append(reset, "thumbnail_height")
	}
	if c.Margin <= 0 || c.Margin > 1 {
		c.Margin = defaults.Margin
		reset = append(reset, "margin")
	}
	if c.SplineSubdivisions < 1 {
		c.SplineSubdivisions = defaults.SplineSubdivisions
		reset = append(reset, "spline_subdivisions")
	}
	if c.OutputFormat != FormatPNG && c.OutputFormat != FormatSVG {
		c.OutputFormat = defaults.OutputFormat
		reset = append(reset, "output_format")
	}
	if c.Workers < 0 {
		c.Workers = defaults.Workers
		reset = append(reset, "workers")
	}
	if c.RecentFolders == nil {
		c.RecentFolders = []string{}
	}
	return reset
}

// AddRecentFolder moves dir to the front of the recent list, keeping at
// most ten entries.
func (c *AppConfig) AddRecentFolder(dir string) {
	folders := []string{dir}
	for _, f := range c.RecentFolders {
		if f != dir {
			folders = append(folders, f)
		}
	}
	if len(folders) > 10 {
		folders = folders[:10]
	}
	c.RecentFolders = folders
}
