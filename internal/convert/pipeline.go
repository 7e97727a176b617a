package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Converter turns a deck into an intermediate PDF inside outDir and
// returns the PDF's path
type Converter interface {
	ToPDF(ctx context.Context, deckPath, outDir string) (string, error)
}

// Rasterizer renders every page of a PDF into outDir at dpi and returns
// the page images in page order
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// SofficeConverter runs LibreOffice headless
type SofficeConverter struct {
	Binary string
}

// ToPDF runs soffice --convert-to pdf
func (s SofficeConverter) ToPDF(ctx context.Context, deckPath, outDir string) (string, error) {
	bin := s.Binary
	if bin == "" {
		bin = "soffice"
	}

	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, deckPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	pdf := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return "", fmt.Errorf("%s wrote no pdf: %w", bin, ErrNoOutput)
	}
	return pdf, nil
}

// PdftoppmRasterizer runs poppler's pdftoppm
type PdftoppmRasterizer struct {
	Binary string
}

const pagePrefix = "page"

// Rasterize runs pdftoppm -png -r dpi
func (p PdftoppmRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}

	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(outDir, pagePrefix))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}

	return numberedPages(outDir, pagePrefix, ".png")
}

// numberedPages lists prefix-N.ext files in numeric order of N.
// pdftoppm zero-pads N to the width of the page count, so lexical order
// is not enough once decks mix sizes.
func numberedPages(dir, prefix, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := pageNumber(e.Name(), prefix, ext)
		if !ok {
			continue
		}
		pages = append(pages, page{n, filepath.Join(dir, e.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

// pageNumber parses "<prefix>-<N><ext>"
func pageNumber(name, prefix, ext string) (int, bool) {
	if !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ext) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"-"), ext)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
