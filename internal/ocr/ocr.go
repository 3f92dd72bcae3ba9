//go:build ocr

// Package ocr wraps the Tesseract engine via gosseract for recognizing text
// in scanned pages. It requires Tesseract to be installed on the system and
// the "ocr" build tag; without the tag a stub implementation is compiled
// instead and every call fails with ErrOCRNotEnabled.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether OCR support was compiled in.
const Enabled = true

// Client wraps a Tesseract session. Close it to release resources.
type Client struct {
	client *gosseract.Client
}

func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the recognition language(s), "+"-separated for multiple
// (e.g. "eng+fra"). Default is "eng".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeImage performs OCR on image bytes (PNG, JPEG, TIFF) and returns
// the recognized text, trimmed.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	if err := c.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
