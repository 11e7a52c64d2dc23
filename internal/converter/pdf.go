package converter

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pageJPEGQuality is used for the in-memory page buffers embedded in the PDF.
const pageJPEGQuality = 90

func init() {
	// Page counts are read back without touching the user's pdfcpu config directory.
	api.DisableConfigDir()
}

// Document describes a written PDF.
type Document struct {
	Path    string
	Pages   int
	Skipped []FileFailure
}

// AssemblePDF writes a PDF to out with one page per decodable file. Each page
// is exactly as large as its image, one point per pixel. Files that cannot be
// decoded or placed are skipped and listed in Document.Skipped.
func AssemblePDF(files []string, out string) (*Document, error) {
	slog.Debug("Starting PDF generation", "numImages", len(files), "out", out)

	pdf := gofpdf.New("P", "pt", "A4", "") // Default page size, actual size set per image
	pdf.SetCreator("img2pdf", false)

	doc := &Document{Path: out}
	added := 0
	for i, path := range files {
		if err := addPage(pdf, fmt.Sprintf("page%d", i), path); err != nil {
			slog.Warn("Skipping image", "filename", filepath.Base(path), "error", err)
			doc.Skipped = append(doc.Skipped, FileFailure{Path: path, Stage: StagePage, Err: err})
			continue
		}
		added++
	}

	if added == 0 {
		return doc, fmt.Errorf("%w: none of %d files could be added to %s", ErrNoImages, len(files), out)
	}

	pdf.SetTitle(latin1(Transliterate(titleFor(out))), false)

	if err := pdf.OutputFileAndClose(out); err != nil {
		return doc, fmt.Errorf("%w: could not write PDF %s: %w", ErrWriteFailure, out, err)
	}

	doc.Pages = readBackPages(out, added)

	slog.Info("PDF written", "path", out, "pages", doc.Pages, "skipped", len(doc.Skipped))
	return doc, nil
}

// readBackPages returns the page count of the written file, falling back to
// added when it cannot be read. A mismatch is logged.
func readBackPages(out string, added int) int {
	n, err := api.PageCountFile(out)
	if err != nil {
		slog.Warn("Could not read back page count", "path", out, "error", err)
		return added
	}
	if n != added {
		slog.Warn("Page count mismatch", "path", out, "added", added, "written", n)
	}
	return n
}

// addPage decodes one file and places it on a new page of matching size.
// gofpdf errors are cleared so later pages can still be added.
func addPage(pdf *gofpdf.Fpdf, imageName, path string) error {
	img, err := decodeImage(path)
	if err != nil {
		return err
	}
	rgb := normalize(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(pageJPEGQuality)); err != nil {
		return fmt.Errorf("%w: could not encode %s to jpg: %w", ErrDecodeFailure, path, err)
	}

	width := float64(rgb.Bounds().Dx())
	height := float64(rgb.Bounds().Dy())

	opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(imageName, opts, &buf)
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("could not register image: %w", err)
	}

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("could not add page: %w", err)
	}

	pdf.ImageOptions(imageName, 0, 0, width, height, false, opts, 0, "")
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("could not place image: %w", err)
	}
	return nil
}

// titleFor returns the output filename without directory and extension.
func titleFor(out string) string {
	base := filepath.Base(out)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
