package converter

import "path/filepath"

// Sentinels locates the cover and back-cover images that wrap every document.
type Sentinels struct {
	Dir   string // Root directory holding both images
	First string // Filename placed before the first page
	Last  string // Filename placed after the last page
}

// FirstPath returns the path of the cover image.
func (s Sentinels) FirstPath() string {
	return filepath.Join(s.Dir, s.First)
}

// LastPath returns the path of the back-cover image.
func (s Sentinels) LastPath() string {
	return filepath.Join(s.Dir, s.Last)
}

// Config holds configuration for the conversion process.
type Config struct {
	Sentinels       Sentinels
	JPEGQuality     int  // Quality used when compressing pages
	ThumbSize       int  // Maximum thumbnail width and height
	LooseExtensions bool // Accept names like "page.jpg.bak"
	KeepCompressed  bool // Leave compressed_* files next to the originals
}

// NewDefaultConfig creates a new Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Sentinels: Sentinels{
			Dir:   ".",
			First: "first.jpg",
			Last:  "last.jpg",
		},
		JPEGQuality:    70,
		ThumbSize:      defaultThumbSize,
		KeepCompressed: true,
	}
}

func (c *Config) matchOptions() MatchOptions {
	return MatchOptions{Loose: c.LooseExtensions}
}
