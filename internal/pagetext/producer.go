// Package pagetext converts source documents into page-tagged text: a single
// UTF-8 stream where lines of the exact form "## Page: N" mark the start of
// each source page. A marker applies to all following text until superseded
// by the next one.
package pagetext

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Producer emits page-tagged text for one document.
type Producer interface {
	Produce(r io.Reader, filename string) (string, error)
}

// Options configures producer construction.
type Options struct {
	// CharsPerPage drives page estimation for formats without native pages.
	CharsPerPage int
	// FallbackPdftotext enables the pdftotext subprocess fallback for PDFs.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this package can handle. Image
// extensions require an OCR-enabled build.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".tiff":     true,
}

// ForFile returns the appropriate producer for a filename.
func ForFile(filename string, opts Options) (Producer, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return &TextProducer{}, nil
	case ".md", ".markdown":
		return &MarkdownProducer{CharsPerPage: opts.CharsPerPage}, nil
	case ".html", ".htm":
		return &HTMLProducer{CharsPerPage: opts.CharsPerPage}, nil
	case ".pdf":
		return &PDFProducer{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXProducer{CharsPerPage: opts.CharsPerPage}, nil
	case ".png", ".jpg", ".jpeg", ".tiff":
		return &ImageProducer{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Marker renders the page marker line for page n.
func Marker(n int) string {
	return fmt.Sprintf("## Page: %d", n)
}
