package converter

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	defaultAspectRatio = 0.7
	defaultThumbSize   = 300
	thumbnailQuality   = 90
)

// ThumbnailPath returns where the thumbnail of folder is written.
func ThumbnailPath(folder string) string {
	return filepath.Join(folder, "thumbnail", "thumbnail.jpg")
}

// BuildThumbnail crops the first image of folder to the proportions of the
// second one when it is very tall, shrinks it to fit maxSize×maxSize and
// writes it to ThumbnailPath(folder).
func BuildThumbnail(folder string, maxSize int, opts MatchOptions) (string, error) {
	if maxSize <= 0 {
		maxSize = defaultThumbSize
	}
	files, err := ListImages(folder, opts)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in directory %s", ErrNoImages, folder)
	}

	aspect := defaultAspectRatio
	if len(files) > 1 {
		cfg, err := decodeConfig(files[1])
		if err != nil {
			return "", err
		}
		if cfg.Height > 0 {
			aspect = float64(cfg.Width) / float64(cfg.Height)
		}
	}

	img, err := decodeImage(files[0])
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(CropTop(normalize(img), aspect), maxSize, maxSize, imaging.Lanczos)

	out := ThumbnailPath(folder)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("%w: could not create %s: %w", ErrWriteFailure, filepath.Dir(out), err)
	}
	if err := writeJPEG(out, thumb, thumbnailQuality); err != nil {
		return "", err
	}

	slog.Info("Thumbnail written", "path", out, "source", files[0], "aspectRatio", aspect,
		"width", thumb.Bounds().Dx(), "height", thumb.Bounds().Dy())
	return out, nil
}

// CropTop keeps the top of img when it is at least twice as tall as wide.
// The kept height is h - w/aspect, or w when that is not positive.
func CropTop(img image.Image, aspect float64) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w*2 > h || aspect <= 0 {
		return imaging.Clone(img)
	}

	bound := int(float64(h) - float64(w)/aspect)
	if bound <= 0 {
		bound = w
	}
	return imaging.Crop(img, image.Rect(0, 0, w, bound).Add(img.Bounds().Min))
}
