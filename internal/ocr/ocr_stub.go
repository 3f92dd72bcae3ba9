//go:build !ocr

// Package ocr wraps the Tesseract engine via gosseract for recognizing text
// in scanned pages. This is the stub compiled without the "ocr" build tag;
// every call fails with ErrOCRNotEnabled. Rebuild with -tags ocr (and
// Tesseract installed) to enable recognition.
package ocr

import "errors"

// Enabled reports whether OCR support was compiled in.
const Enabled = false

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in.
var ErrOCRNotEnabled = errors.New("ocr support not enabled; rebuild with -tags ocr")

// Client matches the OCR-enabled implementation's surface.
type Client struct{}

func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

func (c *Client) RecognizeImage(data []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
