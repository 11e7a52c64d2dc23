package main

import (
	"bytes"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, imaging.Save(imaging.New(w, h, color.White), path))
}

func sentinelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "first.jpg"), 50, 70)
	writeImage(t, filepath.Join(dir, "last.jpg"), 50, 70)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPDFCommand(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, filepath.Join(folder, "01.jpg"), 60, 80)

	out, err := run(t, "pdf", folder, "--sentinels-dir", sentinelDir(t), "-o", "book", "--keep-compressed=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully created")
	assert.Contains(t, out, "3 pages")
	assert.FileExists(t, filepath.Join(folder, "book.pdf"))
	assert.NoFileExists(t, filepath.Join(folder, "compressed_01.jpg"))
}

func TestPDFCommand_MissingSentinels(t *testing.T) {
	_, err := run(t, "pdf", t.TempDir(), "--sentinels-dir", t.TempDir())
	assert.Error(t, err)
}

func TestThumbCommand_WithConfigFile(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, filepath.Join(folder, "01.png"), 400, 1000)

	cfgPath := filepath.Join(t.TempDir(), "img2pdf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("thumbnail:\n  size: 100\nlog:\n  level: debug\n"), 0o644))

	out, err := run(t, "--config", cfgPath, "thumb", folder)
	require.NoError(t, err)
	assert.Contains(t, out, "thumbnail.jpg")

	f, err := os.Open(filepath.Join(folder, "thumbnail", "thumbnail.jpg"))
	require.NoError(t, err)
	defer f.Close()
	img, err := imaging.Decode(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 100)
	assert.LessOrEqual(t, img.Bounds().Dy(), 100)
}

func TestConverterConfig(t *testing.T) {
	t.Setenv("IMG2PDF_QUALITY", "55")
	t.Setenv("IMG2PDF_SENTINELS_FIRST", "cover.png")

	cfgPath := filepath.Join(t.TempDir(), "img2pdf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
sentinels:
  dir: /srv/covers
extensions:
  loose: true
keep_compressed: false
`), 0o644))

	v := viper.New()
	setDefaults(v)
	require.NoError(t, readConfigFile(v, cfgPath))

	cfg := converterConfig(v)
	assert.Equal(t, 55, cfg.JPEGQuality)
	assert.Equal(t, "/srv/covers", cfg.Sentinels.Dir)
	assert.Equal(t, "cover.png", cfg.Sentinels.First)
	assert.Equal(t, "last.jpg", cfg.Sentinels.Last)
	assert.Equal(t, 300, cfg.ThumbSize)
	assert.True(t, cfg.LooseExtensions)
	assert.False(t, cfg.KeepCompressed)
}

func TestReadConfigFile_Missing(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	assert.Error(t, readConfigFile(v, filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, setupLogger(&buf, "warn", "json"))
	assert.Error(t, setupLogger(&buf, "loud", "text"))
	assert.Error(t, setupLogger(&buf, "info", "xml"))
}
