package converter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// compressedPrefix marks artifacts written by CompressImage.
const compressedPrefix = "compressed_"

var (
	strictPattern = regexp.MustCompile(`\.(jpg|png|jpeg|webp)$`)
	loosePattern  = regexp.MustCompile(`^.*\.(jpg|png|jpeg|webp)`)
)

// MatchOptions controls which filenames count as page images.
type MatchOptions struct {
	// Loose accepts any name containing ".<ext>", e.g. "page.jpgx".
	// Otherwise the name must end with the extension.
	Loose bool
}

func (o MatchOptions) matches(name string) bool {
	if o.Loose {
		return loosePattern.MatchString(name)
	}
	return strictPattern.MatchString(name)
}

// ListImages scans a directory for supported image files and returns their
// paths sorted by filename. Extensions are matched case-sensitively.
func ListImages(folder string, opts MatchOptions) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read directory %s: %w", ErrInputNotFound, folder, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, compressedPrefix) {
			continue
		}
		if opts.matches(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(folder, name)
	}
	return paths, nil
}

// SelectFiles lists the page images of folder and wraps them with the cover
// and back-cover sentinels. An empty folder yields just the two sentinels.
// When the sentinels live in folder itself they are not repeated as pages.
func SelectFiles(folder string, sentinels Sentinels, opts MatchOptions) ([]string, error) {
	listed, err := ListImages(folder, opts)
	if err != nil {
		return nil, err
	}

	first, last := sentinels.FirstPath(), sentinels.LastPath()
	var sentinelInfos []os.FileInfo
	for _, p := range []string{first, last} {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: sentinel image %s: %w", ErrInputNotFound, p, err)
		}
		sentinelInfos = append(sentinelInfos, info)
	}

	pages := listed[:0:0]
	for _, p := range listed {
		if isAny(p, sentinelInfos) {
			slog.Debug("Skipping sentinel found among pages", "path", p)
			continue
		}
		pages = append(pages, p)
	}

	slog.Debug("Selected page images", "folder", folder, "pages", len(pages))

	files := make([]string, 0, len(pages)+2)
	files = append(files, first)
	files = append(files, pages...)
	files = append(files, last)
	return files, nil
}

func isAny(path string, infos []os.FileInfo) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	for _, other := range infos {
		if os.SameFile(info, other) {
			return true
		}
	}
	return false
}
