package converter

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// decodeImage opens and decodes a single image file. The file is closed on
// every return path.
func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %w", ErrDecodeFailure, path, err)
	}
	defer file.Close()

	img, formatName, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, path, err)
	}
	slog.Debug("Decoded image", "path", path, "format", formatName, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// normalize converts paletted, grayscale and 16-bit images to 8-bit NRGBA
// anchored at the origin.
func normalize(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	return imaging.Clone(img)
}
