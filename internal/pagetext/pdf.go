package pagetext

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFProducer extracts per-page text from PDFs. It tries the Go library
// first, then falls back to pdftotext if enabled and available. PDFs are the
// one format with native page boundaries, so markers are exact here.
type PDFProducer struct {
	FallbackPdftotext bool
}

func (p *PDFProducer) Produce(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so stage a temp file.
	tmp, err := os.CreateTemp("", "gradient-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(tmpPath)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var b strings.Builder
	for i, page := range pages {
		page = strings.TrimSpace(sanitize([]byte(page)))
		if page == "" {
			continue
		}
		b.WriteString(Marker(i + 1))
		b.WriteString("\n")
		b.WriteString(page)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// extractPDFPages keeps one entry per page, empty for pages that yield no
// text, so marker numbering stays aligned with the source.
func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pdftotextPages(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}
