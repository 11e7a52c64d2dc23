package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 70, cfg.JPEGQuality)
	assert.Equal(t, 300, cfg.ThumbSize)
	assert.Equal(t, "first.jpg", cfg.Sentinels.First)
	assert.Equal(t, "last.jpg", cfg.Sentinels.Last)
	assert.True(t, cfg.KeepCompressed)
	assert.False(t, cfg.LooseExtensions)
}

func TestNew_ResetsInvalidValues(t *testing.T) {
	c := New(&Config{JPEGQuality: 150, ThumbSize: -1})
	assert.Equal(t, 70, c.Config().JPEGQuality)
	assert.Equal(t, 300, c.Config().ThumbSize)

	assert.NotNil(t, New(nil).Config())
}

func TestFolderToPDF(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sentinels = testSentinels(t, 1000, 1500)

	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "01.jpg"), 800, 1600)
	writeImage(t, filepath.Join(dir, "02.png"), 600, 900)
	writeImage(t, filepath.Join(dir, "03.jpg"), 900, 300)

	res, err := New(cfg).FolderToPDF(context.Background(), dir, "Book")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Book.pdf"), res.PDF)
	assert.Equal(t, 5, res.Pages)
	assert.True(t, res.Report.OK(), "unexpected failures: %v", res.Report.Failures)

	dims, err := api.PageDimsFile(res.PDF)
	require.NoError(t, err)
	require.Len(t, dims, 5)
	wantHeights := []float64{900, 1200, 900, 200, 900}
	for i, d := range dims {
		assert.InDelta(t, 600, d.Width, 0.01, "page %d width", i)
		assert.InDelta(t, wantHeights[i], d.Height, 0.01, "page %d height", i)
	}

	for _, name := range []string{"compressed_cover_first.jpg", "compressed_01.jpg", "compressed_02.png", "compressed_03.jpg", "compressed_back_last.jpg"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestFolderToPDF_PagesNamedLikeSentinels(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sentinels = testSentinels(t, 100, 100)

	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "first.jpg"), 100, 300)
	writeImage(t, filepath.Join(dir, "last.jpg"), 100, 200)

	res, err := New(cfg).FolderToPDF(context.Background(), dir, "out")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Pages)

	dims, err := api.PageDimsFile(res.PDF)
	require.NoError(t, err)
	require.Len(t, dims, 4)
	wantHeights := []float64{100, 300, 200, 100}
	for i, d := range dims {
		assert.InDelta(t, 100, d.Width, 0.01, "page %d width", i)
		assert.InDelta(t, wantHeights[i], d.Height, 0.01, "page %d height", i)
	}
}

func TestFolderToPDF_SentinelsInsideFolder(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "first.jpg"), 100, 100)
	writeImage(t, filepath.Join(dir, "last.jpg"), 100, 100)
	writeImage(t, filepath.Join(dir, "01.jpg"), 100, 250)

	cfg := NewDefaultConfig()
	cfg.Sentinels.Dir = dir

	res, err := New(cfg).FolderToPDF(context.Background(), dir, "out")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)

	dims, err := api.PageDimsFile(res.PDF)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	assert.InDelta(t, 250, dims[1].Height, 0.01)
}

func TestFolderToPDF_CompressionFallback(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sentinels = testSentinels(t, 500, 500)

	dir := t.TempDir()
	src := writeImage(t, filepath.Join(dir, "01.png"), 500, 700)
	// A directory in the way makes the compressed copy unwritable.
	require.NoError(t, os.Mkdir(CompressedPath(dir, src), 0o755))

	res, err := New(cfg).FolderToPDF(context.Background(), dir, "out")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)
	require.Len(t, res.Report.Failures, 1)
	assert.Equal(t, src, res.Report.Failures[0].Path)
	assert.Equal(t, StageCompress, res.Report.Failures[0].Stage)
	assert.ErrorIs(t, res.Report.Failures[0].Err, ErrWriteFailure)
}

func TestFolderToPDF_EmptyFolderHasCovers(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sentinels = testSentinels(t, 40, 60)
	cfg.KeepCompressed = false

	dir := t.TempDir()
	res, err := New(cfg).FolderToPDF(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, filepath.Base(dir)+".pdf"), res.PDF)
	assert.Equal(t, 2, res.Pages)

	assert.NoFileExists(t, filepath.Join(dir, "compressed_cover_first.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "compressed_back_last.jpg"))
}

func TestFolderToPDF_FailFast(t *testing.T) {
	t.Run("missing folder", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Sentinels = testSentinels(t, 10, 10)
		_, err := New(cfg).FolderToPDF(context.Background(), filepath.Join(t.TempDir(), "nope"), "out")
		assert.ErrorIs(t, err, ErrInputNotFound)
	})

	t.Run("missing sentinels", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Sentinels.Dir = t.TempDir()
		_, err := New(cfg).FolderToPDF(context.Background(), t.TempDir(), "out")
		assert.ErrorIs(t, err, ErrInputNotFound)
	})

	t.Run("unreadable page", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Sentinels = testSentinels(t, 10, 10)
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "01.jpg"))
		_, err := New(cfg).FolderToPDF(context.Background(), dir, "out")
		assert.ErrorIs(t, err, ErrDecodeFailure)
		assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
	})

	t.Run("cancelled", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Sentinels = testSentinels(t, 10, 10)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(cfg).FolderToPDF(ctx, t.TempDir(), "out")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFolderToThumbnail(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "01.jpg"), 100, 250)
	writeImage(t, filepath.Join(dir, "02.jpg"), 70, 100)

	got, err := New(nil).FolderToThumbnail(context.Background(), dir)
	require.NoError(t, err)
	w, h := imageSize(t, got)
	assert.Equal(t, 100, w)
	assert.Equal(t, 107, h)
}
