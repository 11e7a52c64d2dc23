package converter

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// writeImage saves a solid w×h image to path; the format follows the extension.
func writeImage(t *testing.T, path string, w, h int) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

// writeFile creates a file that is not an image.
func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	return path
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	cfg, err := decodeConfig(path)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

// testSentinels creates cover images of the given size in their own directory.
func testSentinels(t *testing.T, w, h int) Sentinels {
	t.Helper()
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "first.jpg"), w, h)
	writeImage(t, filepath.Join(dir, "last.jpg"), w, h)
	return Sentinels{Dir: dir, First: "first.jpg", Last: "last.jpg"}
}
