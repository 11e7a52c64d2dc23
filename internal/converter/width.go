package converter

import (
	"fmt"
	"image"
	"os"
)

// TargetWidth returns the smallest pixel width among files. Only image headers
// are read. Any unreadable file aborts the scan.
func TargetWidth(files []string) (int, error) {
	if len(files) == 0 {
		return 0, ErrNoImages
	}

	minWidth := 0
	for i, path := range files {
		cfg, err := decodeConfig(path)
		if err != nil {
			return 0, err
		}
		if i == 0 || cfg.Width < minWidth {
			minWidth = cfg.Width
		}
	}
	return minWidth, nil
}

func decodeConfig(path string) (image.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: could not open %s: %w", ErrDecodeFailure, path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	return cfg, nil
}
