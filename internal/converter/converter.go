// Package converter turns a folder of page images into a PDF and a thumbnail.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Result is the outcome of a FolderToPDF job.
type Result struct {
	PDF    string // Path of the written document
	Pages  int    // Page count read back from the document
	Report Report // Files that were left uncompressed or skipped
}

// Converter runs conversion jobs with a fixed configuration.
type Converter struct {
	cfg *Config
}

// New returns a Converter. A nil cfg means NewDefaultConfig. Out of range
// values are replaced by their defaults; cfg itself is not modified.
func New(cfg *Config) *Converter {
	defaults := NewDefaultConfig()
	if cfg == nil {
		return &Converter{cfg: defaults}
	}
	c := *cfg
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		slog.Warn("Invalid JPEG quality, using default", "provided", c.JPEGQuality, "default", defaults.JPEGQuality)
		c.JPEGQuality = defaults.JPEGQuality
	}
	if c.ThumbSize <= 0 {
		slog.Warn("Invalid thumbnail size, using default", "provided", c.ThumbSize, "default", defaults.ThumbSize)
		c.ThumbSize = defaults.ThumbSize
	}
	return &Converter{cfg: &c}
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() *Config {
	return c.cfg
}

// FolderToPDF converts the images of folder, wrapped by the configured
// sentinels, into <folder>/<out>.pdf. All pages are scaled to the narrowest
// image. A file that cannot be compressed is used as is; a file that cannot be
// placed on a page is skipped. Both are recorded in Result.Report.
func (c *Converter) FolderToPDF(ctx context.Context, folder, out string) (*Result, error) {
	if out == "" {
		out = filepath.Base(filepath.Clean(folder))
	}
	slog.Info("Starting folder conversion", "folder", folder, "out", out)

	files, err := SelectFiles(folder, c.cfg.Sentinels, c.cfg.matchOptions())
	if err != nil {
		return nil, err
	}

	targetWidth, err := TargetWidth(files)
	if err != nil {
		return nil, fmt.Errorf("could not determine target width: %w", err)
	}
	slog.Info("Found images to convert", "count", len(files), "targetWidth", targetWidth)

	res := &Result{}
	pages := make([]string, 0, len(files))
	var written []string
	for i, src := range files {
		if err := ctx.Err(); err != nil {
			removeAll(written)
			return nil, err
		}
		role := RolePage
		switch i {
		case 0:
			role = RoleCover
		case len(files) - 1:
			role = RoleBack
		}
		dst := compressedPathFor(folder, src, role)
		got, err := CompressImage(src, dst, targetWidth, c.cfg.JPEGQuality)
		if err != nil {
			res.Report.add(src, StageCompress, err)
		} else {
			written = append(written, got)
		}
		pages = append(pages, got)
	}

	if err := ctx.Err(); err != nil {
		removeAll(written)
		return nil, err
	}

	doc, err := AssemblePDF(pages, filepath.Join(folder, out+".pdf"))
	if doc != nil {
		res.Report.Failures = append(res.Report.Failures, doc.Skipped...)
	}
	if !c.cfg.KeepCompressed {
		removeAll(written)
	}
	if err != nil {
		return nil, err
	}

	res.PDF = doc.Path
	res.Pages = doc.Pages
	slog.Info("Folder conversion completed", "pdf", res.PDF, "pages", res.Pages, "failures", len(res.Report.Failures))
	return res, nil
}

// FolderToThumbnail writes the thumbnail of folder and returns its path.
func (c *Converter) FolderToThumbnail(ctx context.Context, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return BuildThumbnail(folder, c.cfg.ThumbSize, c.cfg.matchOptions())
}

func removeAll(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("Could not remove compressed image", "path", p, "error", err)
		}
	}
}
