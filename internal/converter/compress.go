package converter

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Roles of a file in the ordered sequence. Covers get their own compressed
// names so a page called like a sentinel never shares a copy with it.
const (
	RolePage  = ""
	RoleCover = "cover_"
	RoleBack  = "back_"
)

// CompressedPath returns where the compressed copy of a page src is written.
func CompressedPath(folder, src string) string {
	return compressedPathFor(folder, src, RolePage)
}

func compressedPathFor(folder, src, role string) string {
	return filepath.Join(folder, compressedPrefix+role+filepath.Base(src))
}

// CompressImage resizes src to targetWidth, keeping the aspect ratio, and
// re-encodes it as JPEG at the given quality into dst. A targetWidth of zero
// or equal to the current width leaves the dimensions untouched.
//
// On failure the original src is returned together with the error so the
// caller can keep going with the uncompressed file.
func CompressImage(src, dst string, targetWidth, quality int) (string, error) {
	img, err := decodeImage(src)
	if err != nil {
		return src, err
	}

	width := img.Bounds().Dx()
	if targetWidth > 0 && targetWidth != width {
		img = imaging.Resize(img, targetWidth, 0, imaging.Lanczos)
		slog.Debug("Resized image", "src", src, "from", width, "to", targetWidth, "height", img.Bounds().Dy())
	}

	if err := writeJPEG(dst, img, quality); err != nil {
		return src, err
	}
	return dst, nil
}

// writeJPEG encodes img as JPEG regardless of the destination extension.
func writeJPEG(dst string, img image.Image, quality int) (err error) {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: could not create %s: %w", ErrWriteFailure, dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: could not close %s: %w", ErrWriteFailure, dst, closeErr)
		}
	}()

	if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("%w: could not encode %s: %w", ErrWriteFailure, dst, err)
	}
	return nil
}
